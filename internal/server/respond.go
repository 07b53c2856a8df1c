package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"charityportal/pkg/types"
)

const maxJSONBodyBytes = 1 << 20

var (
	errInvalidJSON        = types.Validationf("Invalid JSON body")
	errInvalidQuery       = types.Validationf("Invalid query parameters")
	errInternal           = types.NewError(types.KindInternal, "Internal server error")
	errRouteNotFound      = types.NewError(types.KindNotFound, "Route not found")
	errInvalidPathID      = types.Validationf("Invalid id")
	errUploadsUnavailable = types.Validationf("Image uploads are not enabled")
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.KindValidation, types.KindInvalidState:
		return http.StatusBadRequest
	case types.KindAuthentication, types.KindUnauthorized:
		return http.StatusUnauthorized
	case types.KindForbidden:
		return http.StatusForbidden
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError sends the client-facing message of a *types.Error. Anything else
// is logged and reported as a generic internal error.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *types.Error
	if !errors.As(err, &apiErr) || apiErr.Kind == types.KindInternal {
		s.logger.WithError(err).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("request_id", requestIDFromContext(r.Context())).
			Error("request failed")
		apiErr = errInternal
	}

	s.writeJSON(w, statusForKind(apiErr.Kind), errorResponse{Error: apiErr.Message})
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	err := json.NewDecoder(body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}

	return nil
}

func decodeQuery(values url.Values, v any) error {
	if err := decoder.Decode(v, values); err != nil {
		return errInvalidQuery
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidPathID
	}
	return id, nil
}

func (s *Service) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errRouteNotFound)
}

func (s *Service) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}
