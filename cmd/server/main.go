package main

import (
	"context"

	bookingevents "hostelbook/internal/bookings/events"
	bookinghandler "hostelbook/internal/bookings/handler"
	bookingrepo "hostelbook/internal/bookings/repository"
	bookingservice "hostelbook/internal/bookings/service"
	dashboardhandler "hostelbook/internal/dashboard/handler"
	dashboardservice "hostelbook/internal/dashboard/service"
	"hostelbook/internal/health"
	hostelhandler "hostelbook/internal/hostels/handler"
	hostelrepo "hostelbook/internal/hostels/repository"
	hostelservice "hostelbook/internal/hostels/service"
	roomhandler "hostelbook/internal/rooms/handler"
	roomrepo "hostelbook/internal/rooms/repository"
	roomservice "hostelbook/internal/rooms/service"
	userhandler "hostelbook/internal/users/handler"
	userrepo "hostelbook/internal/users/repository"
	userservice "hostelbook/internal/users/service"
	"hostelbook/pkg/app"
	"hostelbook/pkg/auth"
	"hostelbook/pkg/config"
	"hostelbook/pkg/kafka"
	kafkaconfig "hostelbook/pkg/kafka/config"
	kafkamiddleware "hostelbook/pkg/kafka/middleware"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/validation"
)

const ServiceName = "hostelbook-api"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid auth configuration", "error", err)
	}
	cfg.SetMongo()
	cfg.SetRedis()

	application := app.NewApplication()

	publisher := newPublisher(cfg, application)
	validator := validation.New(cfg.Log)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokens, cfg.Log)

	hostelRepo := hostelrepo.NewMongoHostelRepository(cfg)
	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewRoomLockRepository(cfg)
	userRepo := userrepo.NewMongoUserRepository(cfg)

	hostels := hostelservice.NewHostelService(hostelRepo, validator, cfg)
	rooms := roomservice.NewRoomService(roomRepo, bookingRepo, lockRepo, validator, cfg)
	bookings := bookingservice.NewBookingService(bookingRepo, lockRepo, roomRepo, publisher, cfg)
	users := userservice.NewUserService(userRepo, hostels, bookings, tokens, auth.NewPasswordHasher(cfg.BcryptCost), validator, cfg)
	dashboard := dashboardservice.NewDashboardService(roomRepo, bookingRepo, cfg)

	application.SetApp(cfg,
		health.NewHandler(healthChecks(cfg), cfg.Log),
		userhandler.NewUserHandler(users, authn, cfg.Log),
		hostelhandler.NewHostelHandler(hostels, authn, cfg.Log),
		roomhandler.NewRoomHandler(rooms, authn, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, authn, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboard, authn, cfg.Log),
	)
	application.Run()
}

// newPublisher returns a Kafka-backed publisher when booking events are
// enabled, and nil otherwise.
func newPublisher(cfg *config.Config, application *app.Application) bookingevents.Publisher {
	if !cfg.BookingEventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafkamiddleware.NewMetrics()
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())

	application.OnShutdown(producer)
	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return bookingevents.NewKafkaPublisher(producer, cfg.Log)
}

func healthChecks(cfg *config.Config) map[string]health.Check {
	checks := map[string]health.Check{
		"mongo": func(ctx context.Context) error {
			return cfg.Client.Mongo.Ping(ctx, nil)
		},
	}
	if cfg.Client.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
