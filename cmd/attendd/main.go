package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/chaitanyaghughuskar/cdac-project/adapters/events"
	"github.com/chaitanyaghughuskar/cdac-project/adapters/store"
	"github.com/chaitanyaghughuskar/cdac-project/adapters/tokenizer"
	"github.com/chaitanyaghughuskar/cdac-project/config"
	"github.com/chaitanyaghughuskar/cdac-project/logging"
	"github.com/chaitanyaghughuskar/cdac-project/service"
	transport "github.com/chaitanyaghughuskar/cdac-project/transport/http"
)

func main() {
	logging.Init()
	log := logging.Logger

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Signing key for portal access tokens. A deployment would load this
	// from the secret store; a fresh key only invalidates sessions on
	// restart.
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	db, err := store.OpenPostgres(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}

	challenges := store.NewRedisChallengeStore(redisClient)
	credentials := store.NewPostgresCredentialStore(db)
	tokens := store.NewPostgresTokenStore(db)
	attendance := store.NewPostgresAttendanceStore(db)
	geofence := store.NewPostgresGeofenceStore(db)
	subjects := store.NewPostgresSubjectDirectory(db)
	eventPub := events.NewWatermillPublisher(publisher)

	webauthnService, err := service.NewWebAuthnService(challenges, credentials, eventPub, cfg.RPID, cfg.RPOrigin, cfg.ChallengeTTL)
	if err != nil {
		log.Fatalf("Failed to configure relying party: %v", err)
	}
	qrService := service.NewQRService(tokens, attendance, subjects)
	attendanceService := service.NewAttendanceService(
		webauthnService, qrService,
		challenges, credentials, attendance, geofence, eventPub,
		cfg.ChallengeTTL,
	)

	cleanup := service.NewCleanupService(tokens, nil, 24*time.Hour)
	if err := cleanup.Start(); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}
	defer cleanup.Stop()

	jwtTokenizer := tokenizer.NewJWTTokenizer(signKey, cfg.AccessTTL)
	handlers := transport.NewHandlers(webauthnService, attendanceService, qrService, geofence)
	router := transport.SetupRouter(handlers, jwtTokenizer)

	log.Infof("attendance service listening on :%s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
