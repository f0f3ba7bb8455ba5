package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobboard/internal/handler"
)

func RegisterRoutes(e *echo.Echo, authH *handler.AuthHandler, jobH *handler.JobHandler) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authH.RegisterRoutes(e)
	jobH.RegisterRoutes(e)
}
