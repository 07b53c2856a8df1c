package server

import (
	"net/http"
	"strings"

	"charityportal/pkg/types"
)

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

type updatedResponse struct {
	Updated int64 `json:"updated"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Service) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	var filter types.NotificationFilter
	if err := decodeQuery(r.URL.Query(), &filter); err != nil {
		s.writeError(w, r, err)
		return
	}

	notifications, err := s.notificationRepo.Notifications(r.Context(), claims.UserID, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, notifications)
}

func (s *Service) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	count, err := s.notificationRepo.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, unreadCountResponse{Unread: count})
}

func (s *Service) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	notificationID := strings.TrimSpace(r.PathValue("id"))
	if notificationID == "" {
		s.writeError(w, r, errInvalidPathID)
		return
	}

	if err := s.notificationRepo.MarkRead(r.Context(), claims.UserID, notificationID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Notification marked as read"})
}

func (s *Service) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	updated, err := s.notificationRepo.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updatedResponse{Updated: updated})
}

func (s *Service) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	deleted, err := s.notificationRepo.Clear(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
}
