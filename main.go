package main

import (
	"blogposts/domain"
	"blogposts/server"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
)

const defaultDatabaseURL = "mongodb://localhost:27017/blog"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	srv := server.New(cfg)
	if cfg.IsDev() {
		srv.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		srv.Echo.Logger.SetLevel(log.INFO)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, cfg.DatabaseURL, cfg.Port); err != nil {
		srv.Echo.Logger.Fatal(err)
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		srv.Echo.Logger.Fatal(err)
	}
}

func loadConfig() (domain.Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = domain.ProEnv
	}
	if env != domain.DevEnv && env != domain.ProEnv {
		return domain.Config{}, fmt.Errorf("unknown ENV %q", env)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" && env == domain.DevEnv {
		databaseURL = defaultDatabaseURL
	}
	if databaseURL == "" {
		return domain.Config{}, errors.New("DATABASE_URL environment variable is not set")
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil || port < 0 || port > 65535 {
			return domain.Config{}, fmt.Errorf("invalid PORT %q", p)
		}
	}

	certCacheDir := os.Getenv("CERT_CACHE_DIR")
	if certCacheDir == "" {
		certCacheDir = "/var/www/.cache"
	}

	return domain.Config{
		DatabaseURL:  databaseURL,
		Port:         port,
		Environment:  env,
		TLSHost:      os.Getenv("TLS_HOST"),
		CertCacheDir: certCacheDir,
	}, nil
}
