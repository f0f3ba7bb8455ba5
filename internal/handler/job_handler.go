package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"jobboard/internal/domain/model"
	"jobboard/internal/middleware"
	"jobboard/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /jobsのHTTP
type JobHandler struct {
	uc       *usecase.JobUsecase
	verifier middleware.AccessTokenVerifier
}

// DI
func NewJobHandler(uc *usecase.JobUsecase, verifier middleware.AccessTokenVerifier) *JobHandler {
	return &JobHandler{uc: uc, verifier: verifier}
}

// 公開ルートと保護ルートを登録。
// 変更系は authenticate → requireRole →（usecase内で）所有チェック の順
func (h *JobHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/jobs", h.list)
	e.GET("/jobs/:id", h.detail)

	poster := e.Group("/jobs")
	poster.Use(middleware.AuthJWT(h.verifier))
	poster.Use(middleware.RequireRole(model.RoleJobPoster))
	poster.POST("", h.create)
	poster.PUT("/:id", h.update)
	poster.DELETE("/:id", h.delete)
	poster.GET("/:id/applications", h.listApplications)

	seeker := e.Group("/jobs/:id/apply")
	seeker.Use(middleware.AuthJWT(h.verifier))
	seeker.Use(middleware.RequireRole(model.RoleJobSeeker))
	seeker.POST("", h.apply)

	apps := e.Group("/applications")
	apps.Use(middleware.AuthJWT(h.verifier))
	apps.Use(middleware.RequireRole(model.RoleJobPoster))
	apps.PATCH("/:id", h.updateApplicationStatus)
}

func (h *JobHandler) list(c echo.Context) error {
	// _limit（default 0 = 制限なし）
	limit := 0
	if v := c.QueryParam("_limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListJobs(c.Request().Context(), usecase.ListJobsInput{
		Type:   c.QueryParam("type"),
		UserID: c.QueryParam("user_id"),
		Limit:  limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *JobHandler) detail(c echo.Context) error {
	job, err := h.uc.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) create(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req usecase.JobInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	job, err := h.uc.CreateJob(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) update(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req usecase.JobInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	job, err := h.uc.UpdateJob(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) delete(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	if err := h.uc.DeleteJob(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "job deleted"})
}

func (h *JobHandler) apply(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req usecase.ApplyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	app, err := h.uc.ApplyToJob(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, app)
}

func (h *JobHandler) listApplications(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	apps, err := h.uc.ListJobApplications(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, apps)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *JobHandler) updateApplicationStatus(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	app, err := h.uc.UpdateApplicationStatus(c.Request().Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, app)
}
