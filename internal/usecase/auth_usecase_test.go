package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"jobboard/internal/domain/model"
	"jobboard/internal/repository"
	"jobboard/internal/security"
	"jobboard/internal/usecase"
	"jobboard/internal/validator"
)

// =====================
// In-memory UserRepository（DB代わり。コピーを返してDBの挙動に寄せる）
// =====================

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // key: user ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
	}

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}

	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	copied := *token
	u.RefreshToken = &copied
	return nil
}

func (r *memUserRepo) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			u.RefreshToken = nil
		}
	}
	return nil
}

func (r *memUserRepo) UpdateProfileImageURL(ctx context.Context, userID string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ProfileImageURL = &url
	return nil
}

func (r *memUserRepo) snapshot() map[string]model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := map[string]model.User{}
	for id, u := range r.users {
		snap[id] = *u
	}
	return snap
}

func (r *memUserRepo) restore(snap map[string]model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = map[string]*model.User{}
	for id, u := range snap {
		copied := u
		r.users[id] = &copied
	}
}

// =====================
// In-memory TransactionManager（txを直列化してerrorでrollback）
// =====================

type memTxManager struct {
	repo *memUserRepo
	txmu sync.Mutex

	// fault injection用。nilなら素のrepoを使う
	wrap func(repository.UserRepository) repository.UserRepository
}

type memTxRepos struct {
	users repository.UserRepository
}

func (t memTxRepos) Users() repository.UserRepository { return t.users }

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	m.txmu.Lock()
	defer m.txmu.Unlock()

	snap := m.repo.snapshot()

	var users repository.UserRepository = m.repo
	if m.wrap != nil {
		users = m.wrap(m.repo)
	}

	if err := fn(memTxRepos{users: users}); err != nil {
		m.repo.restore(snap)
		return err
	}
	return nil
}

// refresh tokenの書き込みだけ黙って失う（コミット失敗の再現）
type dropTokenWrites struct {
	repository.UserRepository
}

func (d dropTokenWrites) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	return nil
}

// =====================
// Helper
// =====================

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

// securityのClaimsをusecaseのTokenClaimsへ詰め替え（mainと同じアダプタ）
type issuerAdapter struct {
	*security.JWTIssuer
}

func (a issuerAdapter) VerifyRefresh(raw string) (*usecase.TokenClaims, error) {
	claims, err := a.JWTIssuer.VerifyRefresh(raw)
	if err != nil {
		return nil, err
	}
	return &usecase.TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

type authFixture struct {
	uc   *usecase.AuthUsecase
	repo *memUserRepo
	tx   *memTxManager
}

func newAuthFixture(t *testing.T, wrap func(repository.UserRepository) repository.UserRepository) *authFixture {
	t.Helper()

	repo := newMemUserRepo()
	tx := &memTxManager{repo: repo, wrap: wrap}
	issuer := security.NewJWTIssuer("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)

	uc := usecase.NewAuthUsecase(
		repo,
		tx,
		security.NewBcryptPasswordHasher(4),
		security.NewBcryptPasswordVerifier(),
		issuerAdapter{issuer},
		uuidGen{},
		validator.NewAuthValidator(),
		zerolog.Nop(),
	)

	return &authFixture{uc: uc, repo: repo, tx: tx}
}

// =====================
// Register
// =====================

func TestRegister_ThenLoginReturnsSameID(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	reg, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "job_poster", reg.User.Role)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	login, err := f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "Str0ng!Pass"})
	assert.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegister_InvalidRole(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	for _, role := range []string{"admin", "JOB_POSTER", "", "job-poster"} {
		_, err := f.uc.Register(ctx, usecase.RegisterInput{
			Username: "bob",
			Password: "Str0ng!Pass",
			Role:     role,
		})
		assert.ErrorIs(t, err, usecase.ErrInvalidRole, role)
	}

	// 何も保存されていない
	_, err := f.repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	// roleが違っても同じusernameは拒否
	_, err = f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Other1!Pass",
		Role:     "job_seeker",
	})
	assert.ErrorIs(t, err, usecase.ErrUsernameTaken)
}

func TestRegister_TokenPersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	// tx内のrefresh token書き込みが黙って失われるケース
	f := newAuthFixture(t, func(r repository.UserRepository) repository.UserRepository {
		return dropTokenWrites{UserRepository: r}
	})

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_seeker",
	})
	assert.ErrorIs(t, err, usecase.ErrTokenPersistence)

	// 登録ごとrollbackされている（成功を報告しながらセッション無しにしない）
	_, err = f.repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

// =====================
// Login
// =====================

func TestLogin_WrongPasswordAndUnknownUserAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	_, errWrongPass := f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "wrongpass"})
	_, errNoUser := f.uc.Login(ctx, usecase.LoginInput{Username: "nouser", Password: "whatever"})

	// username列挙をさせないために外向きのエラーは同一
	assert.ErrorIs(t, errWrongPass, usecase.ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, usecase.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass, errNoUser)
}

func TestLogin_PersistenceFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	// 以後のtxで書き込みが失われるようにする
	f.tx.wrap = func(r repository.UserRepository) repository.UserRepository {
		return dropTokenWrites{UserRepository: r}
	}

	// loginもregisterと対称に失敗を表に出す
	_, err = f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "Str0ng!Pass"})
	assert.ErrorIs(t, err, usecase.ErrTokenPersistence)
}

// =====================
// Refresh / Logout
// =====================

func TestRefresh_AcceptedUntilSuperseded(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	login1, err := f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "Str0ng!Pass"})
	assert.NoError(t, err)

	// 回転しないので何度でも通る
	out1, err := f.uc.Refresh(ctx, login1.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, out1.AccessToken)

	out2, err := f.uc.Refresh(ctx, login1.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, out2.AccessToken)

	// 2回目のloginで前のrefresh tokenは失効する
	login2, err := f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "Str0ng!Pass"})
	assert.NoError(t, err)
	assert.NotEqual(t, login1.RefreshToken, login2.RefreshToken)

	_, err = f.uc.Refresh(ctx, login1.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)

	_, err = f.uc.Refresh(ctx, login2.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout_ThenRefreshFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	reg, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_seeker",
	})
	assert.NoError(t, err)

	assert.NoError(t, f.uc.Logout(ctx, reg.RefreshToken))

	_, err = f.uc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
}

func TestLogout_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	// 一致する行がなくても成功
	assert.NoError(t, f.uc.Logout(ctx, "no-such-token"))
	assert.NoError(t, f.uc.Logout(ctx, ""))
}

func TestRefresh_RejectsGarbageToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := f.uc.Refresh(ctx, raw)
		assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken, raw)
	}
}

func TestRefresh_RejectsVerifiedTokenForDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	reg, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	// アカウントが消えたら署名が有効でも拒否
	f.repo.restore(map[string]model.User{})

	_, err = f.uc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
}

// =====================
// 同時login（single-session-per-accountの競合）
// =====================

func TestConcurrentLogins_LastCommitWins(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	_, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_poster",
	})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	tokens := make([]string, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.uc.Login(ctx, usecase.LoginInput{Username: "alice", Password: "Str0ng!Pass"})
			assert.NoError(t, err)
			tokens[i] = out.RefreshToken
		}(i)
	}
	wg.Wait()

	// 後からcommitした方だけが生きている
	succeeded := 0
	for _, tok := range tokens {
		if _, err := f.uc.Refresh(ctx, tok); err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

// =====================
// Me / プロフィール画像
// =====================

func TestMe_ReturnsProfileWithoutSecrets(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	reg, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_seeker",
	})
	assert.NoError(t, err)

	me, err := f.uc.Me(ctx, reg.User.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "job_seeker", me.Role)
	assert.Nil(t, me.ProfileImageURL)
}

func TestMe_DeletedAccountIsNotACredentialError(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	// tokenのIDに対応するユーザーがいない場合は
	// 「パスワードが違う」系のエラーにしない
	_, err := f.uc.Me(ctx, "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	assert.NotErrorIs(t, err, usecase.ErrInvalidCredentials)

	_, err = f.uc.UpdateProfileImage(ctx, "11111111-1111-1111-1111-111111111111", "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUpdateProfileImage(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	reg, err := f.uc.Register(ctx, usecase.RegisterInput{
		Username: "alice",
		Password: "Str0ng!Pass",
		Role:     "job_seeker",
	})
	assert.NoError(t, err)

	me, err := f.uc.UpdateProfileImage(ctx, reg.User.ID, "https://cdn.example.com/alice.png")
	assert.NoError(t, err)
	assert.NotNil(t, me.ProfileImageURL)
	assert.Equal(t, "https://cdn.example.com/alice.png", *me.ProfileImageURL)

	// 画像を変えてもrefresh tokenはそのまま（認証状態とは独立）
	_, err = f.uc.Refresh(ctx, reg.RefreshToken)
	assert.NoError(t, err)
}
