package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/usecase"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// stub use cases with overridable behavior.

type stubPlayerUC struct {
	players []*model.Player
}

func (s *stubPlayerUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.Player, bool, error) {
	return nil, false, nil
}
func (s *stubPlayerUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.Player, error) {
	return nil, domain.ErrNotFound
}
func (s *stubPlayerUC) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return nil, domain.ErrNotFound
}
func (s *stubPlayerUC) ListAll(ctx context.Context) ([]*model.Player, error) { return s.players, nil }
func (s *stubPlayerUC) Count(ctx context.Context) (int, error)               { return len(s.players), nil }

type stubMatchUC struct {
	active *model.Match
	pool   []*model.Player
}

func (s *stubMatchUC) Open(ctx context.Context) (*model.Match, error) { return nil, nil }
func (s *stubMatchUC) Stop(ctx context.Context) (*model.Match, error) { return nil, nil }
func (s *stubMatchUC) Active(ctx context.Context) (*model.Match, error) {
	if s.active == nil {
		return nil, domain.ErrNoActiveMatch
	}
	return s.active, nil
}
func (s *stubMatchUC) SetPinnedMessage(ctx context.Context, matchID string, messageID int64) error {
	return nil
}
func (s *stubMatchUC) Join(ctx context.Context, playerID string) (*usecase.JoinResult, error) {
	return nil, nil
}
func (s *stubMatchUC) Leave(ctx context.Context, playerID string) (*usecase.LeaveResult, error) {
	return nil, nil
}
func (s *stubMatchUC) Players(ctx context.Context, matchID string) ([]*model.Player, error) {
	return s.pool, nil
}
func (s *stubMatchUC) SweepCooldowns(ctx context.Context) (int64, error) { return 0, nil }

type stubStatsUC struct {
	summary *usecase.PlayerSummary
	rows    []*model.LeaderboardRow
}

func (s *stubStatsUC) AddForUsername(ctx context.Context, username string, kills, deaths, assists int, adr float64, mapName string) (*model.StatLine, error) {
	return nil, nil
}
func (s *stubStatsUC) Summary(ctx context.Context, playerID string) (*usecase.PlayerSummary, error) {
	if s.summary == nil {
		return nil, domain.ErrNotFound
	}
	return s.summary, nil
}
func (s *stubStatsUC) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardRow, error) {
	return s.rows, nil
}

// stubBot records outgoing messages.
type stubBot struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (b *stubBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if b.err != nil {
		return b.err
	}
	b.chatIDs = append(b.chatIDs, chatID)
	b.sent = append(b.sent, text)
	return nil
}
func (b *stubBot) PinMessage(ctx context.Context, chatID int64, messageID int) error   { return nil }
func (b *stubBot) UnpinMessage(ctx context.Context, chatID int64, messageID int) error { return nil }
func (b *stubBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	return nil
}

func newTestServer(secret string) (*Server, *stubPlayerUC, *stubMatchUC, *stubStatsUC) {
	p := &stubPlayerUC{}
	m := &stubMatchUC{}
	st := &stubStatsUC{}
	return NewServer(p, m, st, &stubBot{}, secret, false, testLogger()), p, m, st
}

func login(t *testing.T, srv *Server, secret string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"secret": secret})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("login response: %v", err)
	}
	return out["token"]
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer("s3cret")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	srv, _, _, _ := newTestServer("s3cret")

	t.Run("wrong secret is rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"secret": "nope"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("correct secret yields a token", func(t *testing.T) {
		if token := login(t, srv, "s3cret"); token == "" {
			t.Error("expected non-empty token")
		}
	})
}

func TestAuthRequired(t *testing.T) {
	srv, _, _, _ := newTestServer("s3cret")

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unconfigured secret locks everything out", func(t *testing.T) {
		srv, _, _, _ := newTestServer("")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	srv, _, _, _ := newTestServer("s3cret")
	token := login(t, srv, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "admin_session" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("expected the session cookie to be expired, got %v", rec.Header().Values("Set-Cookie"))
	}
}

func TestAnnounce(t *testing.T) {
	srv, _, _, _ := newTestServer("s3cret")
	bot := srv.bot.(*stubBot)
	token := login(t, srv, "s3cret")

	post := func(t *testing.T, payload string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/announce", bytes.NewBufferString(payload))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		return rec
	}

	t.Run("sends through the adapter", func(t *testing.T) {
		rec := post(t, `{"chat_id": -100123, "text": "Сервер перезапускается через 5 минут"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(bot.sent) != 1 || bot.chatIDs[0] != -100123 {
			t.Fatalf("unexpected sends: %v %v", bot.chatIDs, bot.sent)
		}
	})

	t.Run("rejects empty payloads", func(t *testing.T) {
		for _, payload := range []string{`{}`, `{"chat_id": 1}`, `{"text": "hi"}`, `not json`} {
			if rec := post(t, payload); rec.Code != http.StatusBadRequest {
				t.Errorf("payload %q: expected 400, got %d", payload, rec.Code)
			}
		}
	})

	t.Run("adapter failure maps to 502", func(t *testing.T) {
		bot.err = errors.New("telegram: chat not found")
		defer func() { bot.err = nil }()
		if rec := post(t, `{"chat_id": 5, "text": "hi"}`); rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/announce", bytes.NewBufferString(`{"chat_id": 5, "text": "hi"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestListPlayers(t *testing.T) {
	srv, p, _, _ := newTestServer("s3cret")
	p.players = []*model.Player{
		{ID: "p1", TelegramID: 1, Username: "ivan", FirstName: "Ivan"},
		{ID: "p2", TelegramID: 2, FirstName: "Petr"},
	}
	token := login(t, srv, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []playerJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 players, got %d", len(out))
	}
}

func TestActiveMatch(t *testing.T) {
	srv, _, m, _ := newTestServer("s3cret")
	token := login(t, srv, "s3cret")

	t.Run("404 without an active match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/active", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns the match with its pool", func(t *testing.T) {
		m.active = &model.Match{ID: "m1", IsActive: true, CreatedAt: time.Now()}
		m.pool = []*model.Player{{ID: "p1", TelegramID: 1, FirstName: "Ivan"}}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/active", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var out struct {
			ID   string       `json:"id"`
			Pool []playerJSON `json:"pool"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.ID != "m1" || len(out.Pool) != 1 {
			t.Errorf("unexpected payload: %s", rec.Body.String())
		}
	})
}

func TestPlayerStats(t *testing.T) {
	srv, _, _, st := newTestServer("s3cret")
	st.summary = &usecase.PlayerSummary{
		Player:   &model.Player{ID: "p1", TelegramID: 1, Username: "ivan", FirstName: "Ivan"},
		Averages: &model.PlayerAverages{Matches: 3, AvgADR: 92.5, AvgRating: 2.1},
	}
	token := login(t, srv, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/p1/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["matches"].(float64) != 3 {
		t.Errorf("unexpected matches: %v", out["matches"])
	}
}
