package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockTxManager runs the callback without a real transaction.
type mockTxManager struct {
	beginErr error
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx, nil)
}

// memPlayerRepo is a small in-memory implementation used by unit tests.
type memPlayerRepo struct {
	mu      sync.RWMutex
	byID    map[string]*model.Player
	saveErr error
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{byID: make(map[string]*model.Player)}
}

func (m *memPlayerRepo) Save(ctx context.Context, _ repository.Tx, p *model.Player) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPlayerRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memPlayerRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.byID {
		if p.TelegramID == tgID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlayerRepo) FindByUsername(ctx context.Context, _ repository.Tx, username string) (*model.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.byID {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlayerRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Player, 0, len(m.byID))
	for _, p := range m.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPlayerRepo) Count(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

// memMatchRepo keeps matches and pool membership in memory.
type memMatchRepo struct {
	mu       sync.RWMutex
	matches  map[string]*model.Match
	pools    map[string][]string // matchID -> playerIDs in join order
	balances []*model.TeamBalance
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{
		matches: make(map[string]*model.Match),
		pools:   make(map[string][]string),
	}
}

func (m *memMatchRepo) Create(ctx context.Context, _ repository.Tx, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *match
	m.matches[match.ID] = &cp
	return nil
}

func (m *memMatchRepo) FindActive(ctx context.Context, _ repository.Tx) (*model.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *model.Match
	for _, mt := range m.matches {
		if mt.IsActive && (best == nil || mt.CreatedAt.After(best.CreatedAt)) {
			best = mt
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memMatchRepo) Deactivate(ctx context.Context, _ repository.Tx, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.matches[matchID]; ok {
		mt.IsActive = false
	}
	return nil
}

func (m *memMatchRepo) SetPinnedMessage(ctx context.Context, _ repository.Tx, matchID string, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.matches[matchID]; ok {
		mt.PinnedMessageID = messageID
	}
	return nil
}

func (m *memMatchRepo) MarkBalanced(ctx context.Context, _ repository.Tx, matchID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.matches[matchID]; ok {
		mt.BalancedAt = &at
	}
	return nil
}

func (m *memMatchRepo) AddPlayer(ctx context.Context, _ repository.Tx, matchID, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.pools[matchID] {
		if id == playerID {
			return false, nil
		}
	}
	m.pools[matchID] = append(m.pools[matchID], playerID)
	return true, nil
}

func (m *memMatchRepo) RemovePlayer(ctx context.Context, _ repository.Tx, matchID, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pool := m.pools[matchID]
	for i, id := range pool {
		if id == playerID {
			m.pools[matchID] = append(pool[:i:i], pool[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// players must be registered with the given repo for Players to resolve them.
func (m *memMatchRepo) Players(ctx context.Context, _ repository.Tx, matchID string) ([]*model.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Player, 0, len(m.pools[matchID]))
	for i, id := range m.pools[matchID] {
		out = append(out, &model.Player{ID: id, TelegramID: int64(i + 1), FirstName: id})
	}
	return out, nil
}

func (m *memMatchRepo) CountPlayers(ctx context.Context, _ repository.Tx, matchID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pools[matchID]), nil
}

func (m *memMatchRepo) SaveBalance(ctx context.Context, _ repository.Tx, b *model.TeamBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.balances = append(m.balances, &cp)
	return nil
}

// memStatsRepo keeps stat lines in memory.
type memStatsRepo struct {
	mu    sync.RWMutex
	lines []*model.StatLine
}

func newMemStatsRepo() *memStatsRepo { return &memStatsRepo{} }

func (m *memStatsRepo) Add(ctx context.Context, _ repository.Tx, s *model.StatLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.ID = int64(len(m.lines) + 1)
	s.ID = cp.ID
	m.lines = append(m.lines, &cp)
	return nil
}

func (m *memStatsRepo) Recent(ctx context.Context, _ repository.Tx, playerID string, limit int) ([]*model.StatLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.StatLine
	for i := len(m.lines) - 1; i >= 0 && len(out) < limit; i-- {
		if m.lines[i].PlayerID == playerID {
			cp := *m.lines[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStatsRepo) Averages(ctx context.Context, _ repository.Tx, playerID string) (*model.PlayerAverages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var a model.PlayerAverages
	for _, l := range m.lines {
		if l.PlayerID != playerID {
			continue
		}
		a.Matches++
		a.AvgADR += l.ADR
		a.AvgKills += float64(l.Kills)
		a.AvgDeaths += float64(l.Deaths)
		a.AvgAssists += float64(l.Assists)
		a.AvgRating += l.Rating
	}
	if a.Matches > 0 {
		n := float64(a.Matches)
		a.AvgADR /= n
		a.AvgKills /= n
		a.AvgDeaths /= n
		a.AvgAssists /= n
		a.AvgRating /= n
	}
	return &a, nil
}

func (m *memStatsRepo) AverageADRs(ctx context.Context, _ repository.Tx, playerIDs []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, id := range playerIDs {
		a, _ := m.Averages(ctx, nil, id)
		if a.Matches > 0 {
			out[id] = a.AvgADR
		}
	}
	return out, nil
}

func (m *memStatsRepo) Leaderboard(ctx context.Context, _ repository.Tx, limit int) ([]*model.LeaderboardRow, error) {
	return nil, nil
}

// memCooldownRepo keeps cooldowns in memory.
type memCooldownRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Cooldown
}

func newMemCooldownRepo() *memCooldownRepo {
	return &memCooldownRepo{store: make(map[string]*model.Cooldown)}
}

func (m *memCooldownRepo) Set(ctx context.Context, _ repository.Tx, playerID string, until time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[playerID] = &model.Cooldown{PlayerID: playerID, End: until, Reason: reason}
	return nil
}

func (m *memCooldownRepo) Active(ctx context.Context, _ repository.Tx, playerID string) (*model.Cooldown, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cd, ok := m.store[playerID]
	if !ok || !cd.End.After(time.Now()) {
		return nil, nil
	}
	cp := *cd
	return &cp, nil
}

func (m *memCooldownRepo) DeleteExpired(ctx context.Context, _ repository.Tx) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, cd := range m.store {
		if !cd.End.After(time.Now()) {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

// mockLocker hands out locks unconditionally unless held or err is set.
type mockLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMockLocker() *mockLocker { return &mockLocker{held: make(map[string]bool)} }

func (l *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	if l.held[key] {
		return "", domain.ErrLockHeld
	}
	l.held[key] = true
	return "token", nil
}

func (l *mockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
