package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// respondErr maps err through its error code.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: apperrors.UserMessage(err),
		Code:    string(apperrors.GetCode(err)),
	})
}
