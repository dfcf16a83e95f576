package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/z1media/bannerpost/pkg/auth"
	"github.com/z1media/bannerpost/pkg/config"
	"github.com/z1media/bannerpost/pkg/publish"
	"github.com/z1media/bannerpost/pkg/resize"
	"github.com/z1media/bannerpost/pkg/xapi"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ErrorLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			slog.Error("Error", "error", err, "path", c.Path(), "remote_addr", c.RealIP())
		}
		return err
	}
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.LogLevel {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	var sealer *auth.CookieSealer
	if cfg.CookieSealKey != "" {
		if sealer, err = auth.NewCookieSealer(cfg.CookieSealKey); err != nil {
			log.Fatal(err)
		}
	}

	presets, err := resize.LoadPresets(cfg.DimensionsPath)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Recover())
	e.Use(ErrorLogMiddleware)

	authService := auth.New(auth.Config{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		CallbackURL:   cfg.CallbackURL,
		SecureCookies: cfg.SecureCookies,
		Sealer:        sealer,
	})
	authService.MountRoutes(e.Group("/auth"))

	resizeHandler := resize.NewHandler(presets)
	resizeHandler.MountRoutes(e)

	uploader := xapi.NewMediaClient(xapi.MediaCredentials{
		ConsumerKey:    cfg.APIKey,
		ConsumerSecret: cfg.APISecret,
		AccessToken:    cfg.AccessToken,
		AccessSecret:   cfg.AccessSecret,
	})
	publishService := publish.New(authService, uploader, func(accessToken string) publish.Poster {
		return xapi.NewClient(accessToken)
	})
	e.POST("/publish", publishService.Publish)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if !cfg.HasOAuthCredentials() {
		slog.Warn("X OAuth2 credentials not configured; /auth/start will fail")
	}
	if !cfg.HasMediaCredentials() {
		slog.Warn("X media upload credentials not configured; /publish will fail")
	}

	e.Logger.Fatal(e.Start(cfg.Addr))
}
