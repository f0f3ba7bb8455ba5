package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobboard/internal/middleware"
	"jobboard/internal/usecase"
)

// 認証まわりのHTTP
type AuthHandler struct {
	uc       *usecase.AuthUsecase
	verifier middleware.AccessTokenVerifier
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase, verifier middleware.AccessTokenVerifier) *AuthHandler {
	return &AuthHandler{uc: uc, verifier: verifier}
}

// /register /login /refresh-token /logout /users/me を登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/register", h.register)
	e.POST("/login", h.login)
	e.POST("/refresh-token", h.refresh)
	e.POST("/logout", h.logout)

	g := e.Group("/users/me")
	g.Use(middleware.AuthJWT(h.verifier))
	g.GET("", h.me)
	g.PUT("/profile-image", h.updateProfileImage)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type profileImageRequest struct {
	ProfileImageURL string `json:"profile_image_url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// POST /register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// POST /login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /refresh-token
func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /logout（冪等。失敗も成功として返す）
func (h *AuthHandler) logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "logout success"})
}

// GET /users/me
func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// PUT /users/me/profile-image
func (h *AuthHandler) updateProfileImage(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req profileImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateProfileImage(c.Request().Context(), userID, req.ProfileImageURL)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// usecaseのsentinel errorをHTTPステータスに変換する。
// 500は中身を出さない（内部情報を漏らさない）
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, usecase.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
	case errors.Is(err, usecase.ErrUserNotFound):
		// tokenは有効でもアカウントが消えていたら認証し直し
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
