package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"secretserver/auth/oauth"
	authservice "secretserver/auth/service"
	authstorage "secretserver/auth/storage"
	"secretserver/auth/storage/postgres"
	authsqlite "secretserver/auth/storage/sqlite"
	"secretserver/internal/config"
	"secretserver/internal/logger"
	migrations "secretserver/internal/migrate"
	"secretserver/internal/service"
	secretsqlite "secretserver/internal/storage/sqlite"
	"secretserver/internal/web"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var serverConfigPath string
	var authConfigPath string
	flag.StringVar(&serverConfigPath, "server-config", "configs/server.toml", "path to server config")
	flag.StringVar(&authConfigPath, "auth-config", "configs/auth.toml", "path to auth config")
	flag.Parse()

	cfg, err := config.New(serverConfigPath, authConfigPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server.Debug)

	db, err := sql.Open("sqlite3", "file:"+cfg.Server.SqliteFile+"?cache=shared")
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return err
	}
	if err := migrations.UpServerDB(db); err != nil {
		return err
	}
	log.Info("storage connected")

	ctx := context.Background()
	var authStore authstorage.AuthStorage = authsqlite.New(db, log)
	if cfg.Auth.Driver == "postgres" {
		authStore, err = postgres.New(ctx, postgres.Config{
			Host:     cfg.Auth.Storage.Host,
			Port:     cfg.Auth.Storage.Port,
			DBName:   cfg.Auth.Storage.DBName,
			Username: cfg.Auth.Storage.Username,
			Password: cfg.Auth.Storage.Password,
		})
		if err != nil {
			return err
		}
		log.Info("auth storage: postgres")
	}

	authService := authservice.New(cfg.Auth, authStore, log)
	googleService := oauth.New(cfg.Google, authStore, log)
	secretService := service.New(secretsqlite.New(db, log), log)

	server, err := web.New(cfg.Server, authService, googleService, secretService, log)
	if err != nil {
		return err
	}
	log.WithField("port", cfg.Server.Port).Info("server is up and running")
	return server.Serve()
}
