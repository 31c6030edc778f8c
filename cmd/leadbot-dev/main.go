package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"go.uber.org/zap"

	"leadbot/internal/app"
	"leadbot/migrations"
)

const devPassword = "devpassword"

// Runs the bot against a throwaway ClickHouse container with migrations applied
func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("Dev run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Starting ClickHouse testcontainer...")

	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(devPassword),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		return fmt.Errorf("failed to start ClickHouse container: %w", err)
	}
	defer func() {
		logger.Info("Stopping ClickHouse container...")
		if err := container.Terminate(ctx); err != nil {
			logger.Warn("Failed to terminate container", zap.Error(err))
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return fmt.Errorf("failed to get container port: %w", err)
	}
	logger.Info("ClickHouse started", zap.String("host", host), zap.String("port", port.Port()))

	if err := migrate(host, port.Port()); err != nil {
		return err
	}

	env := map[string]string{
		"CLICKHOUSE_HOST":     host,
		"CLICKHOUSE_PORT":     port.Port(),
		"CLICKHOUSE_DATABASE": "default",
		"CLICKHOUSE_USER":     "default",
		"CLICKHOUSE_PASSWORD": devPassword,
		"CLICKHOUSE_USE_TLS":  "false",
		"STORE_BACKEND":       "clickhouse",
		"SESSION_BACKEND":     "memory",
		"WEBHOOK_MODE":        "false",
	}
	for k, v := range env {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" || os.Getenv("GROUP_CHAT_ID") == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN and GROUP_CHAT_ID must be set in .env or the environment")
	}

	application, err := app.New()
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return application.Run()
}

func migrate(host, port string) error {
	dsn := fmt.Sprintf("clickhouse://default:%s@%s:%s/default?dial_timeout=10s", devPassword, host, port)
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
