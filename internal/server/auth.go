package server

import (
	"errors"
	"net/http"

	"charityportal/internal/auth"
	"charityportal/pkg/types"
)

var errAdminRegistrationDisabled = types.Forbiddenf("Admin accounts cannot be self-registered")

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Role == types.RoleAdmin && !s.config.AllowAdminRegistration {
		s.writeError(w, r, errAdminRegistrationDisabled)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user := &types.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		ContactInfo:  req.ContactInfo,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeAuthResponse(w, r, http.StatusCreated, "User registered successfully", user)
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.userRepo.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			auth.BurnPasswordCheck(req.Password)
			s.writeError(w, r, types.ErrInvalidCredentials)
			return
		}
		s.writeError(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.writeError(w, r, types.ErrInvalidCredentials)
		return
	}

	s.writeAuthResponse(w, r, http.StatusOK, "Login successful", user)
}

func (s *Service) writeAuthResponse(w http.ResponseWriter, r *http.Request, status int, message string, user *types.User) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, status, types.AuthResponse{
		Message: message,
		Token:   token,
		User:    user.Public(),
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	user, err := s.userRepo.User(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, user.Public())
}
