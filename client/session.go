// Package clientはjob-board APIのGoクライアント。
// token pairとプロフィールをStoreに保持して、access tokenの期限切れは
// refresh→再送1回で透過的に処理する
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// refreshしても認証が通らなかった（再ログインが必要）
var ErrSessionExpired = errors.New("session expired")

// 認証が必要な操作をAnonymous状態で呼んだ
var ErrNotAuthenticated = errors.New("not authenticated")

type User struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Role            string  `json:"role"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

type authResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type apiError struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store

	mu    sync.Mutex
	state *State // nil = Anonymous
}

// New はAPIクライアントを作る。storeは起動時にはまだ読まない（Restoreで読む）
func New(baseURL string, store Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		store:   store,
	}
}

// Restoreは起動時の復帰処理。
// 保存済みrefresh tokenをサーバーで検証してからActiveに入る。
// 保存されたプロフィールを検証なしで信用してはいけない
func (c *Client) Restore(ctx context.Context) error {
	state, err := c.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil // Anonymousのまま
		}
		return err
	}

	if state.RefreshToken == "" || state.User == nil {
		_ = c.store.Clear()
		return nil
	}

	//refreshが通れば新しいaccess tokenでActiveへ
	accessToken, err := c.callRefresh(ctx, state.RefreshToken)
	if err != nil {
		//検証できない保存データは全部捨てる
		_ = c.store.Clear()
		return nil
	}

	state.AccessToken = accessToken
	if err := c.store.Save(state); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	return nil
}

// Login はセッションを開始してtoken pairを保存する
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// Register は登録と同時にセッションを開始する
func (c *Client) Register(ctx context.Context, username, password, role string) (*User, error) {
	return c.authenticate(ctx, "/register", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*User, error) {
	resp, err := c.postJSON(ctx, path, body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeAPIError(resp)
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.User == nil || out.AccessToken == "" || out.RefreshToken == "" {
		return nil, fmt.Errorf("malformed auth response")
	}

	state := &State{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         out.User,
	}
	if err := c.store.Save(state); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	return out.User, nil
}

// Logoutはサーバーへbest-effortで通知して、ローカルは必ず消す
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	c.state = nil
	c.mu.Unlock()

	if state != nil && state.RefreshToken != "" {
		resp, err := c.postJSON(ctx, "/logout", map[string]string{
			"refreshToken": state.RefreshToken,
		}, "")
		if err == nil {
			resp.Body.Close()
		}
	}

	return c.store.Clear()
}

// CurrentUserはActiveならキャッシュ済みプロフィールを返す
func (c *Client) CurrentUser() (*User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil || c.state.User == nil {
		return nil, false
	}

	copied := *c.state.User
	return &copied, true
}

// Doは認証付きリクエストを送る。
// 401/403が返ったらrefreshを1回だけ呼んで同じリクエストを1回だけ再送する。
// 2回目も失敗したらセッションを破棄してErrSessionExpired
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state == nil {
		return nil, ErrNotAuthenticated
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, payload, state.AccessToken)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	resp.Body.Close()

	//期限切れの可能性。refresh→再送は1回だけ
	accessToken, err := c.callRefresh(ctx, state.RefreshToken)
	if err != nil {
		c.forget()
		return nil, ErrSessionExpired
	}

	c.mu.Lock()
	if c.state != nil {
		c.state.AccessToken = accessToken
		_ = c.store.Save(c.state)
	}
	c.mu.Unlock()

	resp, err = c.send(ctx, method, path, payload, accessToken)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		c.forget()
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// refreshエンドポイントを呼んで新しいaccess tokenをもらう
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.postJSON(ctx, "/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	}, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("malformed refresh response")
	}

	return out.AccessToken, nil
}

// Anonymousに戻す
func (c *Client) forget() {
	c.mu.Lock()
	c.state = nil
	c.mu.Unlock()
	_ = c.store.Clear()
}

func (c *Client) postJSON(ctx context.Context, path string, body any, accessToken string) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, path, payload, accessToken)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.httpc.Do(req)
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func decodeAPIError(resp *http.Response) error {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("api error (%d): %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("api error (%d)", resp.StatusCode)
}
