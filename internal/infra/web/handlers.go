package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"telegram-match-bot/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin exchanges the shared admin secret for a short-lived JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(body.Secret), []byte(s.secret)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleLogout drops the session cookie. Bearer tokens stay valid until their
// own expiry.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleAnnounce relays an operator message into a chat through the bot
// adapter. In dev mode the noop adapter just logs it.
func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ChatID == 0 || body.Text == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if s.bot == nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := s.bot.SendMessage(r.Context(), body.ChatID, body.Text); err != nil {
		s.log.Error().Err(err).Int64("chat_id", body.ChatID).Msg("announce failed")
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type playerJSON struct {
	ID         string `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name"`
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.playerUC.ListAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list players failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	out := make([]playerJSON, len(players))
	for i, p := range players {
		out[i] = playerJSON{ID: p.ID, TelegramID: p.TelegramID, Username: p.Username, FirstName: p.FirstName}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sum, err := s.statsUC.Summary(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Str("player_id", id).Msg("player stats failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player": playerJSON{
			ID:         sum.Player.ID,
			TelegramID: sum.Player.TelegramID,
			Username:   sum.Player.Username,
			FirstName:  sum.Player.FirstName,
		},
		"matches":     sum.Averages.Matches,
		"avg_adr":     sum.Averages.AvgADR,
		"avg_kills":   sum.Averages.AvgKills,
		"avg_deaths":  sum.Averages.AvgDeaths,
		"avg_assists": sum.Averages.AvgAssists,
		"avg_rating":  sum.Averages.AvgRating,
	})
}

func (s *Server) handleActiveMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.matchUC.Active(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveMatch) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("active match failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	players, err := s.matchUC.Players(r.Context(), m.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("match players failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	pj := make([]playerJSON, len(players))
	for i, p := range players {
		pj[i] = playerJSON{ID: p.ID, TelegramID: p.TelegramID, Username: p.Username, FirstName: p.FirstName}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          m.ID,
		"created_at":  m.CreatedAt,
		"balanced_at": m.BalancedAt,
		"pool":        pj,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := s.statsUC.Leaderboard(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("leaderboard failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	type rowJSON struct {
		Username  string  `json:"username,omitempty"`
		FirstName string  `json:"first_name"`
		Matches   int     `json:"matches"`
		AvgADR    float64 `json:"avg_adr"`
		AvgKills  float64 `json:"avg_kills"`
		AvgRating float64 `json:"avg_rating"`
	}
	out := make([]rowJSON, len(rows))
	for i, r := range rows {
		out[i] = rowJSON{
			Username:  r.Username,
			FirstName: r.FirstName,
			Matches:   r.Matches,
			AvgADR:    r.AvgADR,
			AvgKills:  r.AvgKills,
			AvgRating: r.AvgRating,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
