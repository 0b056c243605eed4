package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// respondError maps a service or domain error onto the wire contract:
// validation and invariant failures get 400 with a {message} body, missing
// resources get an empty 404, insufficient role gets an empty 403. The 404
// also covers non-member access to private trips, so their existence is not
// disclosed. Anything else is an internal error: logged, empty 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvariant):
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: unwrapMessage(err)})
	default:
		s.log.ErrorContext(r.Context(), "internal error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.TripService.Create: validation error: name is
// required" becomes "name is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{
		domain.ErrValidation.Error() + ": ",
		domain.ErrInvariant.Error() + ": ",
	} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	return msg
}
