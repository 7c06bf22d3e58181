package api

import (
	"encoding/json"
	"net/http"

	"examsolver/internal/solver"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeBytes(w, status, mustJSONError(errorResponse{Error: message}))
}

func writeBatchResult(w http.ResponseWriter, status int, payload solver.BatchResult) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeBytes(w, status, data)
}

func writeBytes(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func mustJSONError(payload errorResponse) []byte {
	data, _ := json.Marshal(payload)
	return data
}
