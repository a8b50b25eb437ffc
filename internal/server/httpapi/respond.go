package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/dmitrijs2005/invaders/internal/models"
)

// maxBodyBytes bounds JSON request bodies. Avatars never pass through the
// API, so this stays small.
const maxBodyBytes = 1 << 20

var errorStatuses = []struct {
	err    error
	status int
}{
	{common.ErrorValidation, http.StatusBadRequest},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorAlreadyExists, http.StatusConflict},
	{common.ErrorFileTooLarge, http.StatusRequestEntityTooLarge},
	{common.ErrorUnsupportedMediaType, http.StatusUnsupportedMediaType},
}

// statusFor maps a service error to its HTTP status and the sentinel text
// shown to clients. Unknown errors are internal.
func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.LogError(r.Context(), a.logger, "request failed", err)
	} else {
		a.logger.Debug(r.Context(), "request rejected", "status", status, "error", err.Error())
	}
	writeJSON(w, status, models.ErrorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(common.ErrorValidation, err)
	}
	return nil
}
