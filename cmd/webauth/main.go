package main

import (
	"context"
	"fmt"
	"os"
	"time"

	authservice "github.com/avoronkov/webauth/internal/auth/service"
	"github.com/avoronkov/webauth/internal/common/clock"
	"github.com/avoronkov/webauth/internal/common/config"
	commoncrypto "github.com/avoronkov/webauth/internal/common/crypto"
	"github.com/avoronkov/webauth/internal/common/db"
	"github.com/avoronkov/webauth/internal/common/logger"
	srv "github.com/avoronkov/webauth/internal/common/server"
	sessionrepo "github.com/avoronkov/webauth/internal/session/repository"
	sessionservice "github.com/avoronkov/webauth/internal/session/service"
	userrepo "github.com/avoronkov/webauth/internal/user/repository"
	"github.com/avoronkov/webauth/internal/web"
)

func main() {
	// Config carries the log settings, so the config loader itself can
	// only report through a plain stdout logger.
	bootLog, err := logger.New("", "webauth", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogDir, "webauth", cfg.LogLevel)
	if err != nil {
		bootLog.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, log, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DSN()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	userRepo := userrepo.NewPgRepository(pool)
	sessRepo := sessionrepo.NewPgRepository(pool)
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	sessions := sessionservice.NewManager(
		sessRepo,
		idGenerator,
		clk,
		sessionservice.ManagerConfig{
			SecretKey:   cfg.SecretKey,
			IdleTimeout: cfg.SessionIdleTimeout,
		},
		log,
	)

	auth := authservice.NewAuthService(userRepo, hasher, log)

	if cfg.SessionIdleTimeout > 0 {
		interval := cfg.SessionIdleTimeout / 2
		if interval > 10*time.Minute {
			interval = 10 * time.Minute
		}
		go sessionservice.StartSweeper(ctx, sessRepo, clk, cfg.SessionIdleTimeout, interval, log)
	}

	handler, err := web.NewHandler(auth, sessions, cfg.AutoLoginAfterRegister, log)
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	router := web.NewRouter(handler, sessions, cfg.RequestTimeout, log)

	server := srv.New(srv.DefaultConfig(cfg.HTTPPort), router)

	hooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdown(server, log, "webauth", hooks)
}
