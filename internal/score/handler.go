package score

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{
		service: s,
	}
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(20)
	if err != nil {
		log.Errorf("Failed to fetch leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch leaderboard")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *Handler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	matches, err := h.service.RecentMatches(limit)
	if err != nil {
		log.Errorf("Failed to fetch matches: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch matches")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stats, recent, err := h.service.PlayerStats(name)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"name": name, "wins": 0, "losses": 0, "exists": false,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch player")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":          stats.Name,
		"wins":          stats.Wins,
		"losses":        stats.Losses,
		"win_rate":      stats.WinRate,
		"exists":        true,
		"recentMatches": recent,
	})
}

// RecordMatch is the winner client's terminal result report.
func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WinnerName   string `json:"winnerName"`
		LoserName    string `json:"loserName"`
		WinnerHealth int    `json:"winnerHealth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.WinnerName == "" || req.LoserName == "" {
		writeError(w, http.StatusBadRequest, "winner and loser names are required")
		return
	}

	if err := h.service.RecordMatch(req.WinnerName, req.LoserName, req.WinnerHealth); err != nil {
		log.Errorf("Failed to record match: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record match")
		return
	}
	log.Infof("Recorded match: %s defeated %s", req.WinnerName, req.LoserName)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": req.WinnerName + " defeated " + req.LoserName + "!",
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
