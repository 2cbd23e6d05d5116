package server

import (
	"errors"

	"backend-campbook/internal/auth"
	"backend-campbook/internal/booking"
	"backend-campbook/internal/campground"
	"backend-campbook/internal/config"
	"backend-campbook/internal/db"
	"backend-campbook/internal/geocode"
	"backend-campbook/internal/mailer"
	"backend-campbook/internal/notify"
	"backend-campbook/internal/shared/apperr"
	"backend-campbook/internal/stream"
	"backend-campbook/internal/weather"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	App       *fiber.App
	Cfg       config.Config
	DB        db.Querier
	Redis     *redis.Client
	Log       *logrus.Logger
	Stream    *stream.Hub
	Bookings  *booking.Service
	Weather   *weather.Client
	Scheduler *notify.Scheduler
}

// NewServer wires every component. q may be nil when the database is
// unreachable at startup; routes touching it will then fail per request.
func NewServer(cfg config.Config, q db.Querier, redisClient *redis.Client, log *logrus.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(log)})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.Writer()}))

	hub := stream.NewHub(redisClient, log)
	geo := geocode.NewClient(geocode.Config{BaseURL: cfg.NominatimURL, Timeout: cfg.HTTPTimeout}, redisClient, log)
	wx := weather.NewClient(weather.Config{
		WeatherAPIURL:  cfg.WeatherAPIURL,
		WeatherAPIKey:  cfg.WeatherAPIKey,
		OpenWeatherURL: cfg.OpenWeatherURL,
		OpenWeatherKey: cfg.OpenWeatherAPIKey,
		Country:        cfg.CountryCode,
		Timeout:        cfg.HTTPTimeout,
	}, geo, log)
	bookings := booking.NewService(q, log, booking.WithClock(nil, cfg.Location()), booking.WithFeed(hub))

	mail := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	job := notify.NewJob(notify.Config{
		Schedule: cfg.NotifySchedule,
		Location: cfg.Location(),
		LeadDays: cfg.NotifyLeadDays,
	}, bookings, wx, mail, log)
	scheduler, err := notify.NewScheduler(job, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		App:       app,
		Cfg:       cfg,
		DB:        q,
		Redis:     redisClient,
		Log:       log,
		Stream:    hub,
		Bookings:  bookings,
		Weather:   wx,
		Scheduler: scheduler,
	}

	registerRoutes(s)
	return s, nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	api := s.App.Group("/api/v1")

	auth.RegisterRoutes(api.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), jwtMiddleware)
	campground.RegisterRoutes(api.Group("/campgrounds"), campground.NewService(s.DB, s.Log), jwtMiddleware)
	booking.RegisterRoutes(api.Group("/bookings"), s.Bookings, jwtMiddleware)
	weather.RegisterRoutes(api.Group("/weather"), s.Weather)
	stream.RegisterRoutes(api.Group("/stream"), s.Stream, jwtMiddleware)
}

// errorHandler renders every error as {"success":false,"error":code,"message":msg}.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		msg := "internal error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status, msg = fe.Code, fe.Message
		} else {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   apperr.CodeFor(status),
			"message": msg,
		})
	}
}
