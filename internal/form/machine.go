package form

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"leadbot/internal/models"
)

// Phase events
const (
	eventChooseLanguage    = "choose_language"
	eventAwaitConfirmation = "await_confirmation"
	eventConfirm           = "confirm"
	eventReject            = "reject"
	eventBackToLanguage    = "back_to_language"
	eventComplete          = "complete"
	eventCancel            = "cancel"
)

var (
	selecting  = string(models.PhaseSelectingLanguage)
	collecting = string(models.PhaseCollecting)
	confirming = string(models.PhaseConfirming)
	completed  = string(models.PhaseCompleted)
	cancelled  = string(models.PhaseCancelled)
)

// phaseEvents are the only legal phase changes. Moving the cursor inside
// collecting is not a phase change.
var phaseEvents = fsm.Events{
	{Name: eventChooseLanguage, Src: []string{selecting}, Dst: collecting},
	{Name: eventAwaitConfirmation, Src: []string{collecting}, Dst: confirming},
	{Name: eventConfirm, Src: []string{confirming}, Dst: collecting},
	{Name: eventReject, Src: []string{confirming}, Dst: collecting},
	{Name: eventBackToLanguage, Src: []string{collecting}, Dst: selecting},
	{Name: eventComplete, Src: []string{collecting, confirming}, Dst: completed},
	{Name: eventCancel, Src: []string{selecting, collecting, confirming}, Dst: cancelled},
}

// transition fires event on the session phase and stores the new phase
func transition(ctx context.Context, sess *models.Session, event string) error {
	machine := fsm.NewFSM(string(sess.Phase), phaseEvents, fsm.Callbacks{})
	if err := machine.Event(ctx, event); err != nil {
		return fmt.Errorf("session %d: %s from %s: %w", sess.ID, event, sess.Phase, err)
	}
	sess.Phase = models.Phase(machine.Current())
	return nil
}
