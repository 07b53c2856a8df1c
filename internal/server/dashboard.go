package server

import (
	"net/http"

	"charityportal/internal/store"
)

type leaderboardParams struct {
	Limit int `form:"limit"`
}

func (s *Service) handleNGODashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	dashboard, err := s.statsRepo.NGODashboard(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, dashboard)
}

func (s *Service) handleDonorDashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	dashboard, err := s.statsRepo.DonorDashboard(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, dashboard)
}

func (s *Service) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.statsRepo.AdminDashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, dashboard)
}

func (s *Service) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var params leaderboardParams
	if err := decodeQuery(r.URL.Query(), &params); err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.statsRepo.Leaderboard(r.Context(), store.ClampLeaderboardLimit(params.Limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}
