package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// ローカルに保存するセッション情報
type State struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// Storeは保存先の媒体を隠す約束。
// ファイル・メモリ・他の実装を差し替えられる
type Store interface {
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// 保存されたセッションがない
var ErrNoSession = errors.New("no stored session")

// MemStoreはテストや使い捨てプロセス用のメモリ実装
type MemStore struct {
	mu    sync.Mutex
	state *State
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil, ErrNoSession
	}

	copied := *s.state
	return &copied, nil
}

func (s *MemStore) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *state
	s.state = &copied
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil
	return nil
}

// FileStoreはJSONファイルに保存する実装
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// 壊れたファイルはセッションなし扱い
		return nil, ErrNoSession
	}

	return &state, nil
}

func (s *FileStore) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	// tokenが入るので本人だけ読める権限
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
