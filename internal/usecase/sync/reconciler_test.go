//go:build unit

package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/usecase/sync"
	"atelier-backend/tests/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newReconciler(t *testing.T) (*sync.Reconciler, *mock.MockCalendarService) {
	ctrl := gomock.NewController(t)
	svc := mock.NewMockCalendarService(ctrl)
	exec := sync.NewExecutor(svc, time.Second, discardLogger())
	return sync.NewReconciler(exec, discardLogger()), svc
}

func snap(label string, due *time.Time, eventID *string) *schedule.Snapshot {
	return &schedule.Snapshot{Label: label, DueAt: due, ExternalEventID: eventID}
}

func TestReconcile(t *testing.T) {
	due := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	plan := sync.EventPlan{
		CalendarID: calID,
		Details:    sync.EventDetails{Summary: "Maintenance mower", Start: due, End: due, AllDay: true},
	}

	t.Run("create mirrors a new entity and returns the fresh reference", func(t *testing.T) {
		rec, svc := newReconciler(t)
		svc.EXPECT().CreateEvent(gomock.Any(), calID, plan.Details).Return("ev-new", nil)

		res, err := rec.Reconcile(context.Background(), schedule.OpCreate, nil, snap("mower", &due, nil), plan)
		require.NoError(t, err)
		assert.Equal(t, schedule.ActionCreate, res.Action)
		require.NotNil(t, res.EventID)
		assert.Equal(t, "ev-new", *res.EventID)
		assert.True(t, res.RefChanged)
	})

	t.Run("unchanged entity never reaches the calendar", func(t *testing.T) {
		rec, _ := newReconciler(t)

		res, err := rec.Reconcile(context.Background(), schedule.OpUpdate,
			snap("mower", &due, sp("ev1")), snap("mower", &due, sp("ev1")), plan)
		require.NoError(t, err)
		assert.Equal(t, schedule.ActionNone, res.Action)
		require.NotNil(t, res.EventID)
		assert.Equal(t, "ev1", *res.EventID)
		assert.False(t, res.RefChanged)
	})

	t.Run("moved due date updates the existing event in place", func(t *testing.T) {
		rec, svc := newReconciler(t)
		svc.EXPECT().UpdateEvent(gomock.Any(), calID, "ev1", plan.Details).Return(nil)

		moved := due.AddDate(0, 0, 3)
		res, err := rec.Reconcile(context.Background(), schedule.OpUpdate,
			snap("mower", &moved, sp("ev1")), snap("mower", &due, sp("ev1")), plan)
		require.NoError(t, err)
		assert.Equal(t, schedule.ActionUpdate, res.Action)
		assert.False(t, res.RefChanged)
	})

	t.Run("delete clears the reference once the remote event is gone", func(t *testing.T) {
		rec, svc := newReconciler(t)
		svc.EXPECT().DeleteEvent(gomock.Any(), calID, "ev1").Return(nil)

		res, err := rec.Reconcile(context.Background(), schedule.OpDelete,
			snap("mower", &due, sp("ev1")), snap("mower", nil, nil), plan)
		require.NoError(t, err)
		assert.Equal(t, schedule.ActionDelete, res.Action)
		assert.Nil(t, res.EventID)
		assert.True(t, res.RefChanged)
	})

	t.Run("executor failures surface with the reference untouched", func(t *testing.T) {
		rec, svc := newReconciler(t)
		svc.EXPECT().UpdateEvent(gomock.Any(), calID, "ev1", plan.Details).Return(errors.New("boom"))

		moved := due.AddDate(0, 0, 3)
		res, err := rec.Reconcile(context.Background(), schedule.OpUpdate,
			snap("mower", &moved, sp("ev1")), snap("mower", &due, sp("ev1")), plan)
		assert.ErrorIs(t, err, sync.ErrExternalService)
		require.NotNil(t, res.EventID)
		assert.Equal(t, "ev1", *res.EventID)
		assert.False(t, res.RefChanged)
	})

	t.Run("delete tolerates a missing successor snapshot", func(t *testing.T) {
		rec, svc := newReconciler(t)
		svc.EXPECT().DeleteEvent(gomock.Any(), calID, "ev2").Return(nil)

		res, err := rec.Reconcile(context.Background(), schedule.OpDelete,
			snap("mower", &due, sp("ev2")), nil, plan)
		require.NoError(t, err)
		assert.Equal(t, schedule.ActionDelete, res.Action)
		assert.True(t, res.RefChanged)
	})
}
