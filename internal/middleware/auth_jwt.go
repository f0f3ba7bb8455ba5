package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"jobboard/internal/security"
)

const (
	CtxUserIDKey   = "user_id"   // string (uuid)
	CtxUsernameKey = "username"  // string
	CtxUserRoleKey = "user_role" // string
)

// access tokenを検証する約束（securityのJWTIssuerが満たす）
type AccessTokenVerifier interface {
	VerifyAccess(raw string) (*security.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
// tokenなしとtoken不正はメッセージを分ける（どちらも401）
func AuthJWT(verifier AccessTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid token"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			//署名・期限の検証。失敗理由は外に出さない
			claims, err := verifier.VerifyAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid token"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUsernameKey, claims.Username)
			c.Set(CtxUserRoleKey, claims.Role)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// contextからuser_idを取り出す（AuthJWTの後ろでだけ使える）
func UserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
