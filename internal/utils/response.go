package utils

import (
	"encoding/json"
	"net/http"

	"POOLSHARE_BACK-END/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a JSON error response
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteAuthErrorResponse writes a 401 with a machine-readable code so
// clients can tell an expired token from a bad one
func WriteAuthErrorResponse(w http.ResponseWriter, message, code string) {
	WriteJSONResponse(w, http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
		Code:    code,
	})
}
