// Package form drives the lead form conversation: one session per chat, one
// field at a time.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadbot/internal/i18n"
	"leadbot/internal/metrics"
	"leadbot/internal/models"
	"leadbot/internal/sink"
	"leadbot/internal/storage"
)

// Callback data understood by HandleChoice
const (
	DataConfirmYes   = "confirm:yes"
	DataConfirmNo    = "confirm:no"
	DataBack         = "back"
	DataCancel       = "cancel"
	DataChoicePrefix = "choice:"
)

// Sink receives every completed record exactly once
type Sink interface {
	Submit(ctx context.Context, record models.Record) sink.Outcome
}

// Button is a keyboard option. Data is only used by inline buttons.
type Button struct {
	Label string
	Data  string
}

// Reply is what the user sees after one input
type Reply struct {
	Text string
	// Choices and Navigation make up a reply keyboard
	Choices    []Button
	Navigation []Button
	// Inline buttons are attached to the message itself
	Inline         []Button
	RemoveKeyboard bool
}

const lockStripes = 32

type Engine struct {
	fields   []FieldDefinition
	table    *i18n.Table
	sessions storage.SessionStore
	sink     Sink
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// Inputs of one session are applied one at a time
	locks [lockStripes]sync.Mutex

	now   func() time.Time
	newID func() string
}

func NewEngine(fields []FieldDefinition, table *i18n.Table, sessions storage.SessionStore, submitter Sink, m *metrics.Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		fields:   fields,
		table:    table,
		sessions: sessions,
		sink:     submitter,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Fields returns the form steps in order
func (e *Engine) Fields() []FieldDefinition {
	return e.fields
}

func (e *Engine) lock(id int64) func() {
	mu := &e.locks[uint64(id)%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Start discards any previous session of the chat and asks for the language
func (e *Engine) Start(ctx context.Context, id int64) (Reply, error) {
	defer e.lock(id)()

	if err := e.sessions.Delete(ctx, id); err != nil {
		return Reply{}, fmt.Errorf("failed to discard session %d: %w", id, err)
	}

	sess := models.NewSession(id, e.now())
	if err := e.save(ctx, sess); err != nil {
		return Reply{}, err
	}

	e.metrics.SessionStarted()
	e.logger.Debug("Session started", zap.Int64("session_id", id))
	return e.languagePrompt(e.table.Text(i18n.DefaultLanguage, i18n.KeyChooseLanguage)), nil
}

// Submit applies a text answer to the current step
func (e *Engine) Submit(ctx context.Context, id int64, raw string) (Reply, error) {
	reply, record, err := e.submit(ctx, id, raw)

	if err != nil || record == nil {
		return reply, err
	}
	return e.deliver(ctx, *record), nil
}

// submit holds the chat's lock stripe, delivery happens after it returns
func (e *Engine) submit(ctx context.Context, id int64, raw string) (Reply, *models.Record, error) {
	defer e.lock(id)()

	sess, err := e.load(ctx, id)
	if err != nil || sess == nil {
		return e.fallback(), nil, err
	}

	switch sess.Phase {
	case models.PhaseSelectingLanguage:
		reply, err := e.chooseLanguage(ctx, sess, raw)
		return reply, nil, err
	case models.PhaseCollecting:
		return e.collect(ctx, sess, raw)
	default:
		reply, err := e.touch(ctx, sess, e.confirmPrompt(sess.Language, e.table.Text(sess.Language, i18n.KeyConfirmPending)))
		return reply, nil, err
	}
}

// Confirm accepts or rejects the value waiting for confirmation
func (e *Engine) Confirm(ctx context.Context, id int64, yes bool) (Reply, error) {
	reply, record, err := e.confirm(ctx, id, yes)

	if err != nil || record == nil {
		return reply, err
	}
	return e.deliver(ctx, *record), nil
}

func (e *Engine) confirm(ctx context.Context, id int64, yes bool) (Reply, *models.Record, error) {
	defer e.lock(id)()

	sess, err := e.load(ctx, id)
	if err != nil || sess == nil {
		return e.fallback(), nil, err
	}

	// Stale button from an earlier message
	if sess.Phase != models.PhaseConfirming {
		reply, err := e.touch(ctx, sess, e.currentPrompt(sess))
		return reply, nil, err
	}

	if yes {
		if err := transition(ctx, sess, eventConfirm); err != nil {
			return Reply{}, nil, err
		}
		return e.advance(ctx, sess)
	}

	if err := transition(ctx, sess, eventReject); err != nil {
		return Reply{}, nil, err
	}
	sess.ClearAnswers(e.fields[sess.Cursor].Name)
	reply, err := e.saveAndPrompt(ctx, sess)
	return reply, nil, err
}

// GoBack returns to the previous field and forgets every answer from there on.
// From the first field it returns to the language choice.
func (e *Engine) GoBack(ctx context.Context, id int64) (Reply, error) {
	defer e.lock(id)()

	sess, err := e.load(ctx, id)
	if err != nil || sess == nil {
		return e.fallback(), err
	}

	if sess.Phase == models.PhaseSelectingLanguage || !e.fields[sess.Cursor].AllowBack {
		return e.touch(ctx, sess, e.withNotice(sess, i18n.KeyBackUnavailable))
	}

	if sess.Phase == models.PhaseConfirming {
		if err := transition(ctx, sess, eventReject); err != nil {
			return Reply{}, err
		}
	}

	if sess.Cursor == 0 {
		if err := transition(ctx, sess, eventBackToLanguage); err != nil {
			return Reply{}, err
		}
		sess.ClearAnswers(FieldNames(e.fields)...)
		sess.Language = ""
		if err := e.save(ctx, sess); err != nil {
			return Reply{}, err
		}
		return e.languagePrompt(e.table.Text(i18n.DefaultLanguage, i18n.KeyChooseLanguage)), nil
	}

	sess.Cursor--
	sess.ClearAnswers(FieldNames(e.fields[sess.Cursor:])...)
	return e.saveAndPrompt(ctx, sess)
}

// Cancel discards the session
func (e *Engine) Cancel(ctx context.Context, id int64) (Reply, error) {
	defer e.lock(id)()

	sess, err := e.load(ctx, id)
	if err != nil || sess == nil {
		return e.fallback(), err
	}

	if err := transition(ctx, sess, eventCancel); err != nil {
		return Reply{}, err
	}
	if err := e.sessions.Delete(ctx, id); err != nil {
		return Reply{}, fmt.Errorf("failed to discard session %d: %w", id, err)
	}

	e.metrics.SessionCancelled()
	e.logger.Debug("Session cancelled", zap.Int64("session_id", id))
	return Reply{Text: e.table.Text(sess.Language, i18n.KeyCancelled), RemoveKeyboard: true}, nil
}

// HandleText routes a text message. Back and cancel button labels in any
// language work like the commands.
func (e *Engine) HandleText(ctx context.Context, id int64, text string) (Reply, error) {
	switch {
	case e.table.Matches(i18n.KeyCancel, text):
		return e.Cancel(ctx, id)
	case e.table.Matches(i18n.KeyBack, text):
		return e.GoBack(ctx, id)
	default:
		return e.Submit(ctx, id, text)
	}
}

// HandleChoice routes inline button data
func (e *Engine) HandleChoice(ctx context.Context, id int64, data string) (Reply, error) {
	switch {
	case data == DataConfirmYes:
		return e.Confirm(ctx, id, true)
	case data == DataConfirmNo:
		return e.Confirm(ctx, id, false)
	case data == DataBack:
		return e.GoBack(ctx, id)
	case data == DataCancel:
		return e.Cancel(ctx, id)
	case strings.HasPrefix(data, DataChoicePrefix):
		return e.Submit(ctx, id, strings.TrimPrefix(data, DataChoicePrefix))
	}

	e.logger.Warn("Unknown choice data", zap.Int64("session_id", id), zap.String("data", data))
	return e.Repeat(ctx, id)
}

// Repeat shows the current prompt again without changing the session
func (e *Engine) Repeat(ctx context.Context, id int64) (Reply, error) {
	defer e.lock(id)()

	sess, err := e.load(ctx, id)
	if err != nil || sess == nil {
		return e.fallback(), err
	}
	return e.touch(ctx, sess, e.currentPrompt(sess))
}

// Help returns the command list in the session language
func (e *Engine) Help(ctx context.Context, id int64) (Reply, error) {
	defer e.lock(id)()

	lang := i18n.DefaultLanguage
	sess, err := e.load(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	if sess == nil {
		return Reply{Text: e.table.Text(lang, i18n.KeyHelp)}, nil
	}
	if sess.Language != "" {
		lang = sess.Language
	}
	return e.touch(ctx, sess, Reply{Text: e.table.Text(lang, i18n.KeyHelp)})
}

func (e *Engine) chooseLanguage(ctx context.Context, sess *models.Session, raw string) (Reply, error) {
	lang, ok := e.table.ParseLanguage(raw)
	if !ok {
		e.metrics.ValidationFailed("language")
		return e.touch(ctx, sess, e.languagePrompt(e.table.Text(i18n.DefaultLanguage, i18n.KeyInvalidLanguage)))
	}

	if err := transition(ctx, sess, eventChooseLanguage); err != nil {
		return Reply{}, err
	}
	sess.Language = lang
	sess.Cursor = 0
	return e.saveAndPrompt(ctx, sess)
}

func (e *Engine) collect(ctx context.Context, sess *models.Session, raw string) (Reply, *models.Record, error) {
	def := e.fields[sess.Cursor]

	value, err := def.Validate(e.table, sess.Language, raw)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return Reply{}, nil, err
		}
		e.metrics.ValidationFailed(def.Name)
		e.logger.Debug("Input rejected",
			zap.Int64("session_id", sess.ID),
			zap.String("field", def.Name),
			zap.String("reason", string(verr.Reason)))

		reply := e.fieldPrompt(sess.Language, def)
		reply.Text = e.table.Text(sess.Language, def.InvalidKey)
		reply, err = e.touch(ctx, sess, reply)
		return reply, nil, err
	}

	sess.SetAnswer(def.Name, value)
	if !def.Confirm {
		return e.advance(ctx, sess)
	}

	if err := transition(ctx, sess, eventAwaitConfirmation); err != nil {
		return Reply{}, nil, err
	}
	if err := e.save(ctx, sess); err != nil {
		return Reply{}, nil, err
	}
	return e.confirmPrompt(sess.Language, e.confirmText(sess.Language, value)), nil, nil
}

func (e *Engine) advance(ctx context.Context, sess *models.Session) (Reply, *models.Record, error) {
	if sess.Cursor == len(e.fields)-1 {
		record, err := e.complete(ctx, sess)
		return Reply{}, record, err
	}
	sess.Cursor++
	reply, err := e.saveAndPrompt(ctx, sess)
	return reply, nil, err
}

// complete drops the session and snapshots its record, so a record is handed
// to the sink at most once
func (e *Engine) complete(ctx context.Context, sess *models.Session) (*models.Record, error) {
	if err := transition(ctx, sess, eventComplete); err != nil {
		return nil, err
	}

	record := models.NewRecord(e.newID(), sess, e.now())
	if err := e.sessions.Delete(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to discard completed session %d: %w", sess.ID, err)
	}
	return &record, nil
}

// deliver runs outside the session lock, the sink talks to Telegram and the row store
func (e *Engine) deliver(ctx context.Context, record models.Record) Reply {
	outcome := e.sink.Submit(ctx, record)

	lines := []string{e.table.Text(record.Language, i18n.KeyThankYou)}
	if !outcome.ChatNotified {
		lines = append(lines, e.table.Text(record.Language, i18n.KeyChatError))
	}
	if !outcome.Persisted {
		lines = append(lines, e.table.Text(record.Language, i18n.KeySheetError))
	}

	e.logger.Info("Session completed",
		zap.Int64("session_id", record.SessionID),
		zap.String("record_id", record.ID))
	return Reply{Text: strings.Join(lines, "\n"), RemoveKeyboard: true}
}

// load returns nil without error when the chat has no usable session
func (e *Engine) load(ctx context.Context, id int64) (*models.Session, error) {
	sess, err := e.sessions.Get(ctx, id)
	if errors.Is(err, storage.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %d: %w", id, err)
	}

	// Stored by a build with a different field list
	if sess.Cursor < 0 || sess.Cursor >= len(e.fields) || sess.Phase.Terminal() {
		e.logger.Warn("Dropping unusable session",
			zap.Int64("session_id", id),
			zap.String("phase", string(sess.Phase)),
			zap.Int("cursor", sess.Cursor))
		if err := e.sessions.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to discard session %d: %w", id, err)
		}
		return nil, nil
	}
	return sess, nil
}

func (e *Engine) save(ctx context.Context, sess *models.Session) error {
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session %d: %w", sess.ID, err)
	}
	return nil
}

// touch saves an unchanged session so every handled input restarts its idle timer
func (e *Engine) touch(ctx context.Context, sess *models.Session, reply Reply) (Reply, error) {
	if err := e.save(ctx, sess); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func (e *Engine) saveAndPrompt(ctx context.Context, sess *models.Session) (Reply, error) {
	if err := e.save(ctx, sess); err != nil {
		return Reply{}, err
	}
	return e.fieldPrompt(sess.Language, e.fields[sess.Cursor]), nil
}

func (e *Engine) currentPrompt(sess *models.Session) Reply {
	switch sess.Phase {
	case models.PhaseSelectingLanguage:
		return e.languagePrompt(e.table.Text(i18n.DefaultLanguage, i18n.KeyChooseLanguage))
	case models.PhaseConfirming:
		value, _ := sess.Answer(e.fields[sess.Cursor].Name)
		return e.confirmPrompt(sess.Language, e.confirmText(sess.Language, value))
	default:
		return e.fieldPrompt(sess.Language, e.fields[sess.Cursor])
	}
}

func (e *Engine) withNotice(sess *models.Session, key i18n.Key) Reply {
	reply := e.currentPrompt(sess)
	reply.Text = e.table.Text(sess.Language, key) + "\n\n" + reply.Text
	return reply
}

func (e *Engine) languagePrompt(text string) Reply {
	reply := Reply{Text: text}
	for _, lang := range e.table.Languages() {
		reply.Choices = append(reply.Choices, Button{
			Label: e.table.Text(lang, i18n.KeyLanguageName),
			Data:  DataChoicePrefix + string(lang),
		})
	}
	reply.Navigation = e.navigation(i18n.DefaultLanguage, false)
	return reply
}

func (e *Engine) fieldPrompt(lang models.Language, def FieldDefinition) Reply {
	reply := Reply{Text: e.table.Text(lang, def.PromptKey)}
	for _, c := range def.Choices {
		reply.Choices = append(reply.Choices, Button{
			Label: e.table.Text(lang, c.LabelKey),
			Data:  DataChoicePrefix + c.ID,
		})
	}
	reply.Navigation = e.navigation(lang, def.AllowBack)
	return reply
}

func (e *Engine) navigation(lang models.Language, back bool) []Button {
	var buttons []Button
	if back {
		buttons = append(buttons, Button{Label: e.table.Text(lang, i18n.KeyBack), Data: DataBack})
	}
	return append(buttons, Button{Label: e.table.Text(lang, i18n.KeyCancel), Data: DataCancel})
}

func (e *Engine) confirmText(lang models.Language, value string) string {
	if value == "" {
		value = e.table.Text(lang, i18n.KeyEmptyValue)
	}
	return e.table.Textf(lang, i18n.KeyConfirmValue, value)
}

func (e *Engine) confirmPrompt(lang models.Language, text string) Reply {
	return Reply{
		Text: text,
		Inline: []Button{
			{Label: e.table.Text(lang, i18n.KeyYes), Data: DataConfirmYes},
			{Label: e.table.Text(lang, i18n.KeyNo), Data: DataConfirmNo},
		},
	}
}

func (e *Engine) fallback() Reply {
	return Reply{Text: e.table.Text(i18n.DefaultLanguage, i18n.KeyFallback), RemoveKeyboard: true}
}
