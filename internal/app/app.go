package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/config"
	"github.com/ssorelay/core/internal/database"
	"github.com/ssorelay/core/internal/middleware"
	"github.com/ssorelay/core/internal/modules/auth"
	"github.com/ssorelay/core/internal/modules/notify"
	"github.com/ssorelay/core/internal/modules/session"
	jwtpkg "github.com/ssorelay/core/internal/pkg/jwt"
	pkgredis "github.com/ssorelay/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	hub    *notify.Hub
	logger *zap.Logger
}

// New initializes the application: config → registry store → negotiator → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	logger.Info("session registry ready", zap.String("driver", cfg.Store.Driver))

	var negotiator *auth.Negotiator
	if cfg.OIDCEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		negotiator, err = auth.NewNegotiator(ctx, cfg.OIDC)
		if err != nil {
			return nil, fmt.Errorf("oidc: %w", err)
		}
		logger.Info("oidc negotiator ready", zap.String("issuer", cfg.OIDC.IssuerURL))
	} else {
		logger.Warn("oidc issuer not configured, interactive login disabled")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(buildCORS(cfg))

	app := &App{
		cfg:    cfg,
		router: router,
		hub:    notify.NewHub(logger),
		logger: logger,
	}
	app.registerRoutes(store, negotiator)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases application resources. The registry and hub hold no
// background goroutines; open SSE streams end with the HTTP server.
func (a *App) Shutdown() {}

func buildStore(cfg *config.AppConfig) (session.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		rc, err := pkgredis.Connect(cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(rc), nil

	case config.StoreDriverMySQL:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return session.NewMySQLStore(db), nil

	default:
		return session.NewMemoryStore(), nil
	}
}
