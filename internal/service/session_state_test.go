package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

func TestNextStatusAllowedEdges(t *testing.T) {
	cases := []struct {
		from   models.SessionStatus
		action models.TransitionAction
		to     models.SessionStatus
	}{
		{models.StatusPending, models.ActionApprove, models.StatusApproved},
		{models.StatusPending, models.ActionReject, models.StatusRejected},
		{models.StatusApproved, models.ActionComplete, models.StatusCompleted},
		{models.StatusApproved, models.ActionCancel, models.StatusCancelled},
	}

	for _, tc := range cases {
		next, err := NextStatus(tc.from, tc.action)
		require.NoError(t, err, "%s on %s", tc.action, tc.from)
		assert.Equal(t, tc.to, next)
	}
}

func TestNextStatusRejectsEveryUnlistedEdge(t *testing.T) {
	statuses := []models.SessionStatus{
		models.StatusPending, models.StatusApproved, models.StatusRejected,
		models.StatusCompleted, models.StatusCancelled,
	}
	actions := []models.TransitionAction{
		models.ActionApprove, models.ActionReject, models.ActionComplete, models.ActionCancel,
	}
	allowed := map[string]bool{
		"pending/approve":  true,
		"pending/reject":   true,
		"approved/complete": true,
		"approved/cancel":   true,
	}

	for _, status := range statuses {
		for _, action := range actions {
			if allowed[string(status)+"/"+string(action)] {
				continue
			}
			_, err := NextStatus(status, action)
			require.Error(t, err, "%s on %s", action, status)
			assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
		}
	}
}

func TestApplyTransitionApprove(t *testing.T) {
	session := &models.BookingSession{Status: models.StatusPending}

	require.NoError(t, ApplyTransition(session, models.ActionApprove, ""))
	assert.Equal(t, models.StatusApproved, session.Status)
}

func TestApplyTransitionRejectRequiresReason(t *testing.T) {
	session := &models.BookingSession{Status: models.StatusPending}

	err := ApplyTransition(session, models.ActionReject, "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.StatusPending, session.Status, "failed transition leaves the session untouched")
	assert.Empty(t, session.RejectionReason)
}

func TestApplyTransitionRejectStoresTrimmedReason(t *testing.T) {
	session := &models.BookingSession{Status: models.StatusPending}

	require.NoError(t, ApplyTransition(session, models.ActionReject, "  schedule conflict  "))
	assert.Equal(t, models.StatusRejected, session.Status)
	assert.Equal(t, "schedule conflict", session.RejectionReason)
}

func TestApplyTransitionTerminalStatesAreFinal(t *testing.T) {
	for _, status := range []models.SessionStatus{models.StatusRejected, models.StatusCompleted, models.StatusCancelled} {
		for _, action := range []models.TransitionAction{models.ActionApprove, models.ActionReject, models.ActionComplete, models.ActionCancel} {
			session := &models.BookingSession{Status: status}
			err := ApplyTransition(session, action, "reason")
			require.Error(t, err, "%s on %s", action, status)
			assert.Equal(t, status, session.Status)
		}
	}
}
