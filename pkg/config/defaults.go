package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "hostelbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "5000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultJWTTTL     = 1 * time.Hour
	DefaultBcryptCost = 10

	DefaultPhoneDefaultRegion = "US"

	DefaultRoomLockTTL = 10 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB = 0

	DefaultBookingEventsEnabled = false
	DefaultBookingEventsTopic   = "hostel.bookings"
	DefaultBookingEventsGroup   = "booking-notifier"
	DefaultBookingEventsDLQ     = "hostel.bookings.dlq"

	MinJWTSecretLength = 16
)
