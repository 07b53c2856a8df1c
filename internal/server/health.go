package server

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Charity Portal API is running"})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := healthResponse{Status: "OK", Timestamp: s.now().UTC()}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			s.logger.WithError(err).Warn("health check failed to reach database")
			status = http.StatusServiceUnavailable
			resp.Status = "UNAVAILABLE"
		}
	}

	s.writeJSON(w, status, resp)
}
