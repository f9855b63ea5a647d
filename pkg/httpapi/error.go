package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinix-uz/clinix-sdk/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteCodedError renders a serrors.Error as an envelope, falling back to a
// generic internal error for everything else.
func WriteCodedError(w http.ResponseWriter, status int, err error) error {
	var coded *serrors.Error
	if errors.As(err, &coded) {
		meta := map[string]string{}
		if coded.Details != "" {
			meta["details"] = coded.Details
		}
		return WriteError(w, status, coded.Code, coded.Message, meta)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
