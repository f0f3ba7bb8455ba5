package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// 検証に失敗したトークンは理由を区別せず全部これ
var ErrInvalidToken = errors.New("invalid token")

// tokenに入れるclaims（id・username・role）
type Claims struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuerはaccess/refreshの2種類のtokenを発行・検証する。
// シークレットは別々（片方の漏洩でもう片方を偽造させない）
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// DI
func NewJWTIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// access token発行（短命）
func (i *JWTIssuer) IssueAccess(userID, username, role string) (string, error) {
	return i.issue(userID, username, role, i.accessSecret, i.accessTTL)
}

// refresh token発行（長命）
func (i *JWTIssuer) IssueRefresh(userID, username, role string) (string, error) {
	return i.issue(userID, username, role, i.refreshSecret, i.refreshTTL)
}

func (i *JWTIssuer) issue(userID, username, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			// jtiで毎回ユニークにする。iat/expは秒精度なので、
			// 同じ秒に発行したtokenが同一文字列になってしまう
			// （保存値との照合で前のtokenを失効させる前提が崩れる）
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

// access tokenを検証してclaimsを返す
func (i *JWTIssuer) VerifyAccess(raw string) (*Claims, error) {
	return i.verify(raw, i.accessSecret)
}

// refresh tokenを検証してclaimsを返す
func (i *JWTIssuer) VerifyRefresh(raw string) (*Claims, error) {
	return i.verify(raw, i.refreshSecret)
}

func (i *JWTIssuer) verify(raw string, secret []byte) (*Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// HS256以外は拒否
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	// 署名不正・壊れた形式・期限切れを区別せずに返す
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
