package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"jobboard/internal/config"
	"jobboard/internal/handler"
	"jobboard/internal/middleware"
)

// Newはechoを組み立てて返す（起動はmain側）
func New(cfg config.Config, log zerolog.Logger, authH *handler.AuthHandler, jobH *handler.JobHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, authH, jobH)

	return e
}
