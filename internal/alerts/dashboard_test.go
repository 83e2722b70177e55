package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwatch/internal/types"
)

func TestDashboardRecordAndList(t *testing.T) {
	d := NewDashboard()
	base := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)

	d.Record(types.AlertOverdue, types.AlertMessage{Title: "first", TaskID: "t1"}, base)
	d.Record(types.AlertUrgent, types.AlertMessage{Title: "second", TaskID: "t2"}, base.Add(time.Hour))

	alerts := d.List()
	require.Len(t, alerts, 2)
	assert.Equal(t, "second", alerts[0].Title, "newest alert listed first")
	assert.Equal(t, types.AlertUrgent, alerts[0].Kind)
	assert.Equal(t, "first", alerts[1].Title)
	assert.False(t, alerts[0].Read)
}

func TestDashboardMarkRead(t *testing.T) {
	d := NewDashboard()
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	id := d.Record(types.AlertOverdue, types.AlertMessage{Title: "overdue"}, now)

	assert.Equal(t, 1, d.Unread())
	require.NoError(t, d.MarkRead(id))
	assert.Equal(t, 0, d.Unread())

	err := d.MarkRead("missing")
	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundAlert, appErr.Code)
}

func TestDashboardClearOlderThan(t *testing.T) {
	d := NewDashboard()
	base := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)

	d.Record(types.AlertOverdue, types.AlertMessage{Title: "old"}, base.Add(-48*time.Hour))
	d.Record(types.AlertUrgent, types.AlertMessage{Title: "recent"}, base)

	removed := d.ClearOlderThan(base.Add(-24 * time.Hour))
	assert.Equal(t, 1, removed)

	alerts := d.List()
	require.Len(t, alerts, 1)
	assert.Equal(t, "recent", alerts[0].Title)
}
