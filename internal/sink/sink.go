// Package sink delivers finished lead records to the group chat and the row store.
package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadbot/internal/i18n"
	"leadbot/internal/metrics"
	"leadbot/internal/models"
)

// Columns that are not form fields
const (
	ColumnRecordID    = "record_id"
	ColumnSessionID   = "session_id"
	ColumnLanguage    = "language"
	ColumnSubmittedAt = "submitted_at"
)

// Notifier sends a text to the group chat
type Notifier interface {
	SendToGroup(ctx context.Context, chatID int64, text string) error
}

// RowAppender appends one row in column order
type RowAppender interface {
	AppendRow(ctx context.Context, columns []string) error
}

// DeliveryError is a failed group notification
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to notify chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// PersistenceError is a failed row append
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist row: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Outcome reports which delivery steps succeeded
type Outcome struct {
	ChatNotified bool
	Persisted    bool
	Errors       []error
}

type Config struct {
	GroupChatID   int64
	GroupLanguage models.Language
	// Columns is the row layout: form field names or one of the Column* names
	Columns []string
}

type Sink struct {
	notifier Notifier
	rows     RowAppender
	table    *i18n.Table
	cfg      Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func New(notifier Notifier, rows RowAppender, table *i18n.Table, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Sink {
	return &Sink{
		notifier: notifier,
		rows:     rows,
		table:    table,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// Submit runs both delivery steps once each. A failure of one step never skips the other.
func (s *Sink) Submit(ctx context.Context, record models.Record) Outcome {
	var outcome Outcome
	log := s.logger.With(zap.String("record_id", record.ID), zap.Int64("session_id", record.SessionID))

	if err := s.notifier.SendToGroup(ctx, s.cfg.GroupChatID, s.Render(record)); err != nil {
		derr := &DeliveryError{ChatID: s.cfg.GroupChatID, Err: err}
		log.Error("Failed to notify group chat", zap.Error(derr))
		s.metrics.SinkFailed("chat")
		outcome.Errors = append(outcome.Errors, derr)
	} else {
		outcome.ChatNotified = true
	}

	if err := s.rows.AppendRow(ctx, s.Row(record)); err != nil {
		perr := &PersistenceError{Err: err}
		log.Error("Failed to append lead row", zap.Error(perr))
		s.metrics.SinkFailed("store")
		outcome.Errors = append(outcome.Errors, perr)
	} else {
		outcome.Persisted = true
	}

	s.metrics.Submitted(outcome.ChatNotified, outcome.Persisted)
	log.Info("Lead submitted",
		zap.Bool("chat_notified", outcome.ChatNotified),
		zap.Bool("persisted", outcome.Persisted))
	return outcome
}

// Render builds the group notification text
func (s *Sink) Render(record models.Record) string {
	lang := s.cfg.GroupLanguage
	var b strings.Builder
	b.WriteString(s.table.Text(lang, i18n.KeyNotificationTitle))
	b.WriteString("\n\n")
	b.WriteString(s.line(lang, ColumnLanguage, s.languageName(record.Language)))
	for _, a := range record.Answers {
		b.WriteString("\n")
		b.WriteString(s.line(lang, a.Field, a.Value))
	}
	return b.String()
}

func (s *Sink) line(lang models.Language, field, value string) string {
	if value == "" {
		value = s.table.Text(lang, i18n.KeyEmptyValue)
	}
	return s.table.Text(lang, i18n.LabelKey(field)) + ": " + value
}

func (s *Sink) languageName(lang models.Language) string {
	return s.table.Text(lang, i18n.KeyLanguageName)
}

// Row builds the row cells in configured column order
func (s *Sink) Row(record models.Record) []string {
	row := make([]string, 0, len(s.cfg.Columns))
	for _, col := range s.cfg.Columns {
		switch col {
		case ColumnRecordID:
			row = append(row, record.ID)
		case ColumnSessionID:
			row = append(row, fmt.Sprint(record.SessionID))
		case ColumnLanguage:
			row = append(row, s.languageName(record.Language))
		case ColumnSubmittedAt:
			row = append(row, record.SubmittedAt.UTC().Format(time.RFC3339))
		default:
			row = append(row, record.Value(col))
		}
	}
	return row
}

// DefaultColumns is the language followed by every form field
func DefaultColumns(fields []string) []string {
	return append([]string{ColumnLanguage}, fields...)
}

// ValidateColumns checks that every column is a known field or meta column
func ValidateColumns(columns, fields []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no sheet columns configured")
	}

	known := map[string]bool{
		ColumnRecordID:    true,
		ColumnSessionID:   true,
		ColumnLanguage:    true,
		ColumnSubmittedAt: true,
	}
	for _, f := range fields {
		known[f] = true
	}

	for _, col := range columns {
		if !known[col] {
			return fmt.Errorf("unknown sheet column %q", col)
		}
	}
	return nil
}
