package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

// sessionTransition is a single allowed edge in the session lifecycle.
type sessionTransition struct {
	from   models.SessionStatus
	action models.TransitionAction
	to     models.SessionStatus
}

// The complete transition table. Every (status, action) pair not listed is
// rejected; rejected, completed and cancelled are terminal.
var sessionTransitions = []sessionTransition{
	{from: models.StatusPending, action: models.ActionApprove, to: models.StatusApproved},
	{from: models.StatusPending, action: models.ActionReject, to: models.StatusRejected},
	{from: models.StatusApproved, action: models.ActionComplete, to: models.StatusCompleted},
	{from: models.StatusApproved, action: models.ActionCancel, to: models.StatusCancelled},
}

// NextStatus resolves the target status for a transition, or an
// InvalidTransitionError when the edge is not in the table.
func NextStatus(current models.SessionStatus, action models.TransitionAction) (models.SessionStatus, error) {
	for _, tr := range sessionTransitions {
		if tr.from == current && tr.action == action {
			return tr.to, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("cannot %s a %s session", action, current))
}

// ApplyTransition mutates the session in place after checking the transition
// table and the reject guard. On failure the session is left untouched.
func ApplyTransition(session *models.BookingSession, action models.TransitionAction, reason string) error {
	next, err := NextStatus(session.Status, action)
	if err != nil {
		return err
	}

	if action == models.ActionReject && strings.TrimSpace(reason) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	session.Status = next
	if action == models.ActionReject {
		session.RejectionReason = strings.TrimSpace(reason)
	}
	return nil
}
