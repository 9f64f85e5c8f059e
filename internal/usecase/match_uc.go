package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
	"telegram-match-bot/internal/infra/logging"
	"telegram-match-bot/internal/infra/metrics"
)

// Compile-time check
var _ MatchUseCase = (*matchUC)(nil)

// JoinResult describes the pool after a successful join.
type JoinResult struct {
	Match *model.Match
	Count int
	// Full reports that this join brought the pool to its target size.
	Full bool
}

// LeaveResult describes the pool after a successful leave.
type LeaveResult struct {
	Match *model.Match
	Count int
}

// CooldownError is returned from Join while the player's leave cooldown is
// still running.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for %s", e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool { return target == domain.ErrOnCooldown }

// MatchUseCase manages the recruiting session lifecycle and its player pool.
type MatchUseCase interface {
	// Open creates a new active match; fails with domain.ErrActiveMatchExists
	// when one is already open.
	Open(ctx context.Context) (*model.Match, error)
	// Stop deactivates the active match and returns it (for unpinning);
	// fails with domain.ErrNoActiveMatch when none is open.
	Stop(ctx context.Context) (*model.Match, error)
	Active(ctx context.Context) (*model.Match, error)
	SetPinnedMessage(ctx context.Context, matchID string, messageID int64) error

	Join(ctx context.Context, playerID string) (*JoinResult, error)
	Leave(ctx context.Context, playerID string) (*LeaveResult, error)
	Players(ctx context.Context, matchID string) ([]*model.Player, error)

	// SweepCooldowns removes expired cooldown rows, returning the count.
	SweepCooldowns(ctx context.Context) (int64, error)
}

type matchUC struct {
	matches   repository.MatchRepository
	cooldowns repository.CooldownRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger

	poolSize      int
	leaveCooldown time.Duration
}

func NewMatchUseCase(
	matches repository.MatchRepository,
	cooldowns repository.CooldownRepository,
	tm repository.TransactionManager,
	poolSize int,
	leaveCooldown time.Duration,
	logger *zerolog.Logger,
) *matchUC {
	return &matchUC{
		matches:       matches,
		cooldowns:     cooldowns,
		tm:            tm,
		log:           logger,
		poolSize:      poolSize,
		leaveCooldown: leaveCooldown,
	}
}

func (u *matchUC) Open(ctx context.Context) (*model.Match, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Open")()

	var match *model.Match
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		_, err := u.matches.FindActive(ctx, tx)
		if err == nil {
			return domain.ErrActiveMatchExists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		m := model.NewMatch()
		if err := u.matches.Create(ctx, tx, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMatchesOpened()
	metrics.SetMatchPoolSize(0)
	u.log.Info().Str("match_id", match.ID).Msg("match opened")
	return match, nil
}

func (u *matchUC) Stop(ctx context.Context) (*model.Match, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Stop")()

	var match *model.Match
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.matches.FindActive(ctx, tx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoActiveMatch
			}
			return err
		}
		if err := u.matches.Deactivate(ctx, tx, m.ID); err != nil {
			return err
		}
		m.IsActive = false
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.SetMatchPoolSize(0)
	u.log.Info().Str("match_id", match.ID).Msg("match stopped")
	return match, nil
}

func (u *matchUC) Active(ctx context.Context) (*model.Match, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Active")()
	m, err := u.matches.FindActive(ctx, repository.NoTX)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoActiveMatch
		}
		return nil, err
	}
	return m, nil
}

func (u *matchUC) SetPinnedMessage(ctx context.Context, matchID string, messageID int64) error {
	defer logging.TraceDuration(u.log, "MatchUC.SetPinnedMessage")()
	return u.matches.SetPinnedMessage(ctx, repository.NoTX, matchID, messageID)
}

// Join adds the player to the active pool. The cooldown check, capacity check
// and insert run in one serializable transaction so the pool can never exceed
// its size even under concurrent joins.
func (u *matchUC) Join(ctx context.Context, playerID string) (*JoinResult, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Join")()

	var res JoinResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.matches.FindActive(ctx, tx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoActiveMatch
			}
			return err
		}

		cd, err := u.cooldowns.Active(ctx, tx, playerID)
		if err != nil {
			return err
		}
		if cd != nil {
			return &CooldownError{Remaining: cd.Remaining(time.Now())}
		}

		n, err := u.matches.CountPlayers(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		if n >= u.poolSize {
			return domain.ErrPoolFull
		}

		added, err := u.matches.AddPlayer(ctx, tx, m.ID, playerID)
		if err != nil {
			return err
		}
		if !added {
			return domain.ErrAlreadyInPool
		}

		res = JoinResult{Match: m, Count: n + 1, Full: n+1 == u.poolSize}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPoolJoins()
	metrics.SetMatchPoolSize(res.Count)
	u.log.Info().Str("match_id", res.Match.ID).Str("player_id", playerID).Int("pool", res.Count).Msg("player joined pool")
	return &res, nil
}

// Leave removes the player from the pool and starts the leave cooldown, which
// stops join/leave flapping from spamming the chat.
func (u *matchUC) Leave(ctx context.Context, playerID string) (*LeaveResult, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Leave")()

	var res LeaveResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.matches.FindActive(ctx, tx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoActiveMatch
			}
			return err
		}

		removed, err := u.matches.RemovePlayer(ctx, tx, m.ID, playerID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrNotInPool
		}

		if u.leaveCooldown > 0 {
			until := time.Now().Add(u.leaveCooldown)
			if err := u.cooldowns.Set(ctx, tx, playerID, until, "left pool"); err != nil {
				return err
			}
		}

		n, err := u.matches.CountPlayers(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		res = LeaveResult{Match: m, Count: n}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPoolLeaves()
	metrics.SetMatchPoolSize(res.Count)
	u.log.Info().Str("match_id", res.Match.ID).Str("player_id", playerID).Int("pool", res.Count).Msg("player left pool")
	return &res, nil
}

func (u *matchUC) Players(ctx context.Context, matchID string) ([]*model.Player, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Players")()
	return u.matches.Players(ctx, repository.NoTX, matchID)
}

func (u *matchUC) SweepCooldowns(ctx context.Context) (int64, error) {
	n, err := u.cooldowns.DeleteExpired(ctx, repository.NoTX)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddCooldownsSwept(n)
		u.log.Debug().Int64("deleted", n).Msg("expired cooldowns swept")
	}
	return n, nil
}
