package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"escape-room-service/internal/app"
)

type ProgressHandler struct {
	service *app.RoundService
}

func NewProgressHandler(service *app.RoundService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// ServeHTTP answers GET /progress?playerId=&section= with the section summary.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := r.URL.Query().Get("playerId")
	section, err := strconv.Atoi(r.URL.Query().Get("section"))
	if playerID == "" || err != nil || section < 1 {
		http.Error(w, "missing playerId or section", http.StatusBadRequest)
		return
	}

	progress, err := h.service.Progress(r.Context(), playerID, section)
	if err != nil {
		log.Printf("progress lookup failed: %v", err)
		http.Error(w, "progress unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(progress)
}
