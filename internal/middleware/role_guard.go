package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobboard/internal/domain/model"
)

// contextに入っているroleが要求されたものと完全一致するか確認する。
// 認証済み（AuthJWT通過後）でなければ401、role不一致は403
func RequireRole(required model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing token"))
			}

			if role != string(required) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
