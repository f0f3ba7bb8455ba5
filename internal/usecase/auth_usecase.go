package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"jobboard/internal/domain/model"
	"jobboard/internal/repository"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//400 roleが閉じた集合にない
	ErrInvalidRole = errors.New("invalid role")
	//409 usernameが既に使われている
	ErrUsernameTaken = errors.New("username taken")
	//401 ユーザー不在もパスワード不一致も外向きにはこれ1つ
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 refresh tokenの検証失敗・失効・上書き済み
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	//401 tokenは通ったがアカウントがもう存在しない（削除済みなど）
	ErrUserNotFound = errors.New("user not found")
	//500 refresh tokenの書き込みが確認できなかった
	ErrTokenPersistence = errors.New("token persistence failure")
	//500
	ErrInternal = errors.New("internal error")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, username string, password string, role string) error
	ValidateLogin(ctx context.Context, username string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

// 平文パスワードからハッシュへ
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// access/refreshの発行と、refreshの検証を約束
type TokenIssuer interface {
	IssueAccess(userID, username, role string) (string, error)
	IssueRefresh(userID, username, role string) (string, error)
	VerifyRefresh(raw string) (*TokenClaims, error)
}

// issuerが返すclaims
type TokenClaims struct {
	UserID   string
	Username string
	Role     string
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// API返却用。password hashとrefresh tokenは絶対に含めない
type UserDTO struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type RegisterInput struct {
	Username string
	Password string
	Role     string
}

type LoginInput struct {
	Username string
	Password string
}

// register/loginが返すもの（profile + token pair）
type AuthOutput struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

type RefreshOutput struct {
	AccessToken string `json:"accessToken"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	tx        repository.TransactionManager
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    TokenIssuer
	idGen     IDGenerator
	validator AuthValidator
	log       zerolog.Logger
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	tx repository.TransactionManager,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	validator AuthValidator,
	log zerolog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		tx:        tx,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		idGen:     idGen,
		validator: validator,
		log:       log,
	}
}

// Registerは会員登録を実行する。
// user作成とrefresh token書き込みは1トランザクション。
// 書き込み後の確認readが一致しなければ登録ごとrollbackする
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthOutput, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Username, in.Password, in.Role); err != nil {
		return nil, err
	}

	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	//username重複チェック（unique制約が最終防衛線）
	existing, err := u.users.FindByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInternal
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		ID:           u.idGen.NewID(),
		Username:     in.Username,
		PasswordHash: pwHash,
		Role:         role,
	}

	//token pair発行（署名は純粋計算なのでtxの外でよい）
	accessToken, err := u.issuer.IssueAccess(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, ErrInternal
	}
	refreshToken, err := u.issuer.IssueRefresh(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, ErrInternal
	}

	//user作成 → refresh token書き込み → 確認read を1つのtxで行う
	txErr := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrUsernameTaken) {
				return ErrUsernameTaken
			}
			return err
		}

		if err := r.Users().UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
			return err
		}

		//確認read。tokenが見えなければ登録自体を失敗させる
		stored, err := r.Users().FindByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if stored.RefreshToken == nil || *stored.RefreshToken != refreshToken {
			return ErrTokenPersistence
		}

		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrUsernameTaken) || errors.Is(txErr, ErrTokenPersistence) {
			return nil, txErr
		}
		u.log.Error().Err(txErr).Msg("register transaction failed")
		return nil, ErrInternal
	}

	return &AuthOutput{
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Loginはパスワードを照合してtoken pairを返す。
// 新しいrefresh tokenの保存で前回のものは失効する（1アカウント1セッション）
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*AuthOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Username, in.Password); err != nil {
		return nil, err
	}

	//ユーザー取得。不在でも外向きのエラーはErrInvalidCredentialsで統一
	//（username列挙をさせない。内部ログだけ理由を残す）
	user, err := u.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			u.log.Warn().Str("username", in.Username).Msg("login: unknown username")
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		u.log.Warn().Str("user_id", user.ID).Msg("login: password mismatch")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := u.issuer.IssueAccess(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, ErrInternal
	}
	refreshToken, err := u.issuer.IssueRefresh(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, ErrInternal
	}

	//refresh tokenの上書きと確認readを1つのtxで行う。
	//確認できなければloginも失敗にする（registerと対称）
	txErr := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
			return err
		}

		stored, err := r.Users().FindByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if stored.RefreshToken == nil || *stored.RefreshToken != refreshToken {
			return ErrTokenPersistence
		}

		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrTokenPersistence) {
			u.log.Error().Str("user_id", user.ID).Msg("login: refresh token not persisted")
			return nil, ErrTokenPersistence
		}
		u.log.Error().Err(txErr).Msg("login transaction failed")
		return nil, ErrInternal
	}

	return &AuthOutput{
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refreshは提示されたrefresh tokenから新しいaccess tokenを発行する。
// 署名が正しくても、DBに保存中の値と完全一致しなければ拒否する
// （logout・別loginでの上書きを効かせるための照合）。
// refresh token自体はここでは回転させない
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*RefreshOutput, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshToken); err != nil {
		return nil, err
	}

	//署名・期限の検証
	claims, err := u.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	//claimsのIDでユーザー取得
	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, ErrInternal
	}

	//保存中のtokenと完全一致するか
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		u.log.Warn().Str("user_id", user.ID).Msg("refresh: superseded or revoked token")
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := u.issuer.IssueAccess(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, ErrInternal
	}

	return &RefreshOutput{AccessToken: accessToken}, nil
}

// Logoutは提示された値と一致するアカウントのrefresh tokenをクリアする。
// 一致する行がなくても成功扱い（冪等）。検証はしない。
// 値はあくまで検索キーで、tokenを知っていること自体が権限
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := u.users.ClearRefreshTokenByValue(ctx, refreshToken); err != nil {
		// best-effortなので失敗は外に出さない
		u.log.Warn().Err(err).Msg("logout: clear failed")
	}

	return nil
}

// Meは認証済みユーザーのプロフィールを返す。
// token検証後にアカウントが消えているケースはcredentialエラーではない
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// UpdateProfileImageはプロフィール画像URLを更新する（認証状態とは独立）
func (u *AuthUsecase) UpdateProfileImage(ctx context.Context, userID string, url string) (*UserDTO, error) {
	if url == "" {
		return nil, ErrValidation
	}

	if err := u.users.UpdateProfileImageURL(ctx, userID, url); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternal
	}

	return u.Me(ctx, userID)
}

// model.UserをAPI返却用DTOに変換。hashは絶対に出さない
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Username:        u.Username,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}
