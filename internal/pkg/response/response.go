package response

import (
	"encoding/json"
	"net/http"

	"github.com/futig/docqa-backend/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, entity.ErrorResponse{Error: message})
}

// ErrorWithMessage writes an error response with a human readable detail
func ErrorWithMessage(w http.ResponseWriter, status int, errText, message string) {
	JSON(w, status, entity.ErrorResponse{Error: errText, Message: message})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
