package app

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"leadbot/internal/config"
	"leadbot/internal/storage"
	"leadbot/internal/storage/ch"
	"leadbot/internal/storage/gsheets"
	"leadbot/internal/storage/memory"
	"leadbot/internal/storage/redisstore"
	"leadbot/internal/storage/stubs"
)

// initStores opens the row store and the session store
func (a *App) initStores(ctx context.Context) error {
	rows, err := a.openRowStore(ctx)
	if err != nil {
		return err
	}
	a.rows = rows

	if err := rows.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", a.config.StoreBackend, err)
	}
	a.logger.Info("Row store initialized successfully", zap.String("backend", a.config.StoreBackend))

	sessions, err := a.openSessionStore()
	if err != nil {
		return err
	}
	a.sessions = sessions
	a.logger.Info("Session store ready",
		zap.String("backend", a.config.Session.Backend),
		zap.Duration("ttl", a.config.Session.TTL),
	)
	return nil
}

func (a *App) openRowStore(ctx context.Context) (storage.RowStore, error) {
	switch a.config.StoreBackend {
	case config.StoreMock:
		a.logger.Warn("Using mock row store, leads are kept in memory only")
		return stubs.NewMockStore(), nil

	case config.StoreClickHouse:
		c := a.config.ClickHouse
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", c.Host),
			zap.Int("port", c.Port),
			zap.String("database", c.Database),
			zap.String("user", c.User),
			zap.Bool("tls", c.UseTLS),
		)
		db, err := ch.NewClickHouseDB(c.Host, c.Port, c.Database, c.User, c.Password, c.UseTLS)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		return db, nil

	default:
		s := a.config.Sheets
		a.logger.Info("Connecting to Google Sheets",
			zap.String("spreadsheet_id", s.SpreadsheetID),
			zap.String("worksheet", s.Worksheet),
		)
		store, err := gsheets.NewStore(ctx, s.SpreadsheetID, s.Worksheet, option.WithCredentialsFile(s.CredentialsFile))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *App) openSessionStore() (storage.SessionStore, error) {
	if a.config.Session.Backend == config.SessionsRedis {
		store, err := redisstore.NewSessionStore(a.config.Redis.Addr, a.config.Redis.Password, a.config.Redis.DB, a.config.Session.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return memory.NewSessionStore(a.config.Session.TTL), nil
}

func (a *App) closeStores() error {
	var err error
	if a.sessions != nil {
		if cerr := a.sessions.Close(); cerr != nil {
			a.logger.Error("Error closing session store", zap.Error(cerr))
			err = multierr.Append(err, cerr)
		}
	}
	if a.rows != nil {
		if cerr := a.rows.Close(); cerr != nil {
			a.logger.Error("Error closing row store", zap.Error(cerr))
			err = multierr.Append(err, cerr)
		}
	}
	return err
}
