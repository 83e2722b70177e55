package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandleListAlerts serves dashboard alerts, newest first.
func (s *Server) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: s.Dashboard.List()})
}

// HandleUnreadAlerts serves the unread-alert count.
func (s *Server) HandleUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: map[string]int{"unread": s.Dashboard.Unread()}})
}

// HandleMarkAlertRead marks one dashboard alert as read.
func (s *Server) HandleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	if err := s.Dashboard.MarkRead(alertID); err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: map[string]string{"id": alertID, "status": "read"}})
}
