package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"charityportal/internal/auth"
	"charityportal/internal/utils"
	"charityportal/pkg/types"

	"github.com/sirupsen/logrus"
)

var (
	errForeignNGO        = types.Forbiddenf("Cannot create donations for another NGO")
	errNotDonationOwner  = types.Forbiddenf("You can only modify your own donations")
	errImageMissing      = types.Validationf("Missing image file")
	errImageTooLarge     = types.Validationf("Image is too large")
	errImageUnsupported  = types.Validationf("Unsupported image type. Must be one of: jpeg, png, gif, webp")
	allowedImageMIMEType = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

type cancelDonationResponse struct {
	Message  string          `json:"message"`
	Donation *types.Donation `json:"donation"`
}

func (s *Service) handleListDonations(w http.ResponseWriter, r *http.Request) {
	var filters types.DonationFilters
	if err := decodeQuery(r.URL.Query(), &filters); err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := filters.Query()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	donations, err := s.donationRepo.Donations(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, donations)
}

func (s *Service) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	donationID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err := s.donationRepo.Donation(r.Context(), donationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, donation)
}

func (s *Service) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := claimsFromContext(ctx)

	var req types.CreateDonationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err := req.Validate(s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if donation.NgoID != claims.UserID {
		s.writeError(w, r, errForeignNGO)
		return
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"donation_id": donation.ID,
		"ngo_id":      donation.NgoID,
	}).Info("donation created")

	s.writeJSON(w, http.StatusCreated, donation)
}

func (s *Service) handleUpdateDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	donation, ok := s.ownedDonation(w, r)
	if !ok {
		return
	}

	var update types.DonationUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, err := update.Fields(s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.donationRepo.Update(ctx, donation.ID, fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleCancelDonation(w http.ResponseWriter, r *http.Request) {
	donation, ok := s.ownedDonation(w, r)
	if !ok {
		return
	}

	cancelled, err := s.donationRepo.Cancel(r.Context(), donation.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, cancelDonationResponse{
		Message:  "Donation cancelled successfully",
		Donation: cancelled,
	})
}

func (s *Service) handleUploadDonationImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.images == nil {
		s.writeError(w, r, errUploadsUnavailable)
		return
	}

	donation, ok := s.ownedDonation(w, r)
	if !ok {
		return
	}

	if donation.Status.Terminal() {
		s.writeError(w, r, types.ClosedDonationError(donation.Status))
		return
	}

	maxBytes := s.config.ImageMaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, errImageTooLarge)
			return
		}
		s.writeError(w, r, errImageMissing)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, errImageMissing)
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		s.writeError(w, r, errImageTooLarge)
		return
	}

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if !slices.Contains(allowedImageMIMEType, contentType) {
		s.writeError(w, r, errImageUnsupported)
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, r, err)
		return
	}

	key := utils.ObjectKey(fmt.Sprintf("donations/%d", donation.ID), header.Filename)

	location, err := s.images.Upload(ctx, key, file, contentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.donationRepo.Update(ctx, donation.ID, map[string]any{"images": location})
	if err != nil {
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.logger.WithError(derr).WithField("key", key).Error("failed to remove orphaned donation image")
		}
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"donation_id": donation.ID,
		"key":         key,
	}).Info("donation image uploaded")

	s.writeJSON(w, http.StatusOK, updated)
}

// ownedDonation loads the donation named in the path and checks that the
// caller's NGO owns it, writing the error response when it does not.
func (s *Service) ownedDonation(w http.ResponseWriter, r *http.Request) (*types.Donation, bool) {
	claims, _ := claimsFromContext(r.Context())

	donationID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	donation, err := s.donationRepo.Donation(r.Context(), donationID)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	if !ownsDonation(claims, donation) {
		s.writeError(w, r, errNotDonationOwner)
		return nil, false
	}

	return donation, true
}

func ownsDonation(claims *auth.Claims, donation *types.Donation) bool {
	return claims != nil && claims.Role == types.RoleNGO && donation.NgoID == claims.UserID
}
