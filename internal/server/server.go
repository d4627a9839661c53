package server

import (
	"strings"
	"sync"
	"time"

	"backend-travelapp/internal/auth"
	"backend-travelapp/internal/comment"
	"backend-travelapp/internal/config"
	"backend-travelapp/internal/connection"
	"backend-travelapp/internal/db"
	"backend-travelapp/internal/location"
	"backend-travelapp/internal/media"
	"backend-travelapp/internal/post"
	"backend-travelapp/internal/shared/apperr"
	"backend-travelapp/internal/stream"
	"backend-travelapp/internal/tag"
	"backend-travelapp/internal/user"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Stream *stream.Hub
}

// Collectors live in the default prometheus registry, so they are created
// once per process.
var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("travelapp")
	})
	return prom
}

func NewServer(cfg config.Config, pg db.Querier, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/stream")
		},
	}))

	if cfg.MetricsEnabled {
		p := metrics()
		p.RegisterAt(app, "/metrics")
		app.Use(p.Middleware)
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	limiter := auth.NewLoginLimiter(s.Redis, s.Cfg.LoginRateLimit, time.Minute)
	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB).
		WithTTL(s.Cfg.AccessTokenTTL, s.Cfg.RefreshTokenTTL).
		WithLimiter(limiter)
	jwtMiddleware := authSvc.RequireUser()

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	user.RegisterRoutes(s.App.Group("/users"), user.NewService(s.DB), jwtMiddleware)
	post.RegisterRoutes(s.App.Group("/posts"), post.NewService(s.DB), jwtMiddleware)
	location.RegisterRoutes(s.App.Group("/locations"), location.NewService(s.DB), jwtMiddleware)
	tag.RegisterRoutes(s.App.Group("/tags"), tag.NewService(s.DB), jwtMiddleware)
	comment.RegisterRoutes(s.App.Group("/comments"), comment.NewService(s.DB, s.Stream), jwtMiddleware)
	connection.RegisterRoutes(s.App.Group("/connections"), connection.NewService(s.DB, s.Stream), jwtMiddleware)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB, s.Cfg.MediaBaseURL), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

// Close releases background resources owned by the server.
func (s *Server) Close() {
	s.Stream.Close()
}
