package server

import (
	"net/http"

	"charityportal/pkg/types"

	"github.com/sirupsen/logrus"
)

var (
	errForeignDonor         = types.Forbiddenf("You can only contribute on your own behalf")
	errNotContributionOwner = types.Forbiddenf("Only the NGO that owns the donation can update this contribution")
)

func (s *Service) handleContributionsByDonor(w http.ResponseWriter, r *http.Request) {
	donorID, err := pathID(r, "donorId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contributions, err := s.contributionRepo.ContributionsByDonor(r.Context(), donorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, contributions)
}

func (s *Service) handleContributionsByDonation(w http.ResponseWriter, r *http.Request) {
	donationID, err := pathID(r, "donationId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contributions, err := s.contributionRepo.ContributionsByDonation(r.Context(), donationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, contributions)
}

func (s *Service) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := claimsFromContext(ctx)

	var req types.CreateContributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	contribution, pickup, err := req.Validate(s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if contribution.DonorID != claims.UserID && claims.Role != types.RoleAdmin {
		s.writeError(w, r, errForeignDonor)
		return
	}

	view, err := s.contributionRepo.Create(ctx, contribution, pickup)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"contribution_id": view.ID,
		"donation_id":     view.DonationID,
		"donor_id":        view.DonorID,
	}).Info("contribution created")

	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Service) handleUpdateContributionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := claimsFromContext(ctx)

	contributionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UpdateContributionStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.contributionRepo.Contribution(ctx, contributionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if claims.Role != types.RoleAdmin && (current.NgoID == nil || *current.NgoID != claims.UserID) {
		s.writeError(w, r, errNotContributionOwner)
		return
	}

	updated, err := s.contributionRepo.UpdateStatus(ctx, contributionID, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}
