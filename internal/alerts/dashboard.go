package alerts

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cropwatch/internal/types"
)

// Dashboard is the in-memory, dashboard-visible record of dispatched
// alerts. Every dispatch lands here regardless of channel outcomes; entries
// carry a read flag and age out via ClearOlderThan.
type Dashboard struct {
	mu     sync.RWMutex
	alerts map[string]*types.DashboardAlert
}

// NewDashboard creates an empty Dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{alerts: make(map[string]*types.DashboardAlert)}
}

// Record stores a dispatched alert and returns its dashboard ID.
func (d *Dashboard) Record(kind types.AlertKind, msg types.AlertMessage, now time.Time) string {
	alert := &types.DashboardAlert{
		ID:        uuid.NewString(),
		Title:     msg.Title,
		Body:      msg.Body,
		Kind:      kind,
		Priority:  msg.Priority,
		TaskID:    msg.TaskID,
		FieldID:   msg.FieldID,
		Timestamp: now,
		Actions:   msg.Actions,
	}

	d.mu.Lock()
	d.alerts[alert.ID] = alert
	d.mu.Unlock()
	return alert.ID
}

// List returns all alerts, newest first.
func (d *Dashboard) List() []types.DashboardAlert {
	d.mu.RLock()
	out := make([]types.DashboardAlert, 0, len(d.alerts))
	for _, a := range d.alerts {
		out = append(out, *a)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Unread returns the number of unread alerts.
func (d *Dashboard) Unread() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, a := range d.alerts {
		if !a.Read {
			n++
		}
	}
	return n
}

// MarkRead flags one alert as read.
func (d *Dashboard) MarkRead(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	alert, ok := d.alerts[id]
	if !ok {
		return types.NewAppError(types.ErrCodeNotFoundAlert, "alert not found", nil)
	}
	alert.Read = true
	return nil
}

// ClearOlderThan drops alerts recorded before the cutoff, returning the
// number removed.
func (d *Dashboard) ClearOlderThan(cutoff time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, a := range d.alerts {
		if a.Timestamp.Before(cutoff) {
			delete(d.alerts, id)
			removed++
		}
	}
	return removed
}
