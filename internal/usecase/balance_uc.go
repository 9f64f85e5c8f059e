package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/balance"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/domain/ports/repository"
	"telegram-match-bot/internal/infra/logging"
	"telegram-match-bot/internal/infra/metrics"
	"telegram-match-bot/internal/infra/redis"
)

// Compile-time check
var _ BalanceUseCase = (*balanceUC)(nil)

// BalanceResult is the produced split plus display data.
type BalanceResult struct {
	Match *model.Match
	Split balance.Split
}

// BalanceUseCase turns a full pool into two ADR-balanced teams.
type BalanceUseCase interface {
	Balance(ctx context.Context, matchID string) (*BalanceResult, error)
}

type balanceUC struct {
	matches repository.MatchRepository
	stats   repository.StatsRepository
	tm      repository.TransactionManager
	locker  redis.Locker
	log     *zerolog.Logger
}

func NewBalanceUseCase(
	matches repository.MatchRepository,
	stats repository.StatsRepository,
	tm repository.TransactionManager,
	locker redis.Locker,
	logger *zerolog.Logger,
) *balanceUC {
	return &balanceUC{matches: matches, stats: stats, tm: tm, locker: locker, log: logger}
}

// Balance loads the pool, fills in average ADRs (players without history get
// balance.DefaultADR), finds the best split and persists it. A Redis lock per
// match keeps a second concurrent trigger (e.g. two workers seeing the pool
// fill at once) from balancing the same match twice.
func (u *balanceUC) Balance(ctx context.Context, matchID string) (*BalanceResult, error) {
	defer logging.TraceDuration(u.log, "BalanceUC.Balance")()
	start := time.Now()

	token, err := u.locker.TryLock(ctx, redis.BalanceLockKey(matchID), 30*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			metrics.IncBalanceRun("locked")
		} else {
			metrics.IncBalanceRun("error")
		}
		return nil, err
	}
	defer func() {
		if uerr := u.locker.Unlock(ctx, redis.BalanceLockKey(matchID), token); uerr != nil {
			u.log.Warn().Err(uerr).Str("match_id", matchID).Msg("balance lock release failed")
		}
	}()

	var res BalanceResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		players, err := u.matches.Players(ctx, tx, matchID)
		if err != nil {
			return err
		}

		ids := make([]string, len(players))
		for i, p := range players {
			ids[i] = p.ID
		}
		adrs, err := u.stats.AverageADRs(ctx, tx, ids)
		if err != nil {
			return err
		}

		pool := make([]balance.Player, len(players))
		for i, p := range players {
			adr, ok := adrs[p.ID]
			if !ok {
				adr = balance.DefaultADR
			}
			name := p.FirstName
			if p.Username != "" {
				name = "@" + p.Username
			}
			pool[i] = balance.Player{ID: p.ID, Name: name, ADR: adr}
		}

		split, err := balance.Teams(pool)
		if err != nil {
			return err
		}

		now := time.Now()
		half := len(pool) / 2
		tb := &model.TeamBalance{
			MatchID:      matchID,
			Team1Players: playerIDs(split.Team1),
			Team2Players: playerIDs(split.Team2),
			Team1AvgADR:  split.Sum1 / float64(half),
			Team2AvgADR:  split.Sum2 / float64(half),
			Difference:   split.Diff,
			BalancedAt:   now,
		}
		if err := u.matches.SaveBalance(ctx, tx, tb); err != nil {
			return err
		}
		if err := u.matches.MarkBalanced(ctx, tx, matchID, now); err != nil {
			return err
		}

		m, err := u.matches.FindActive(ctx, tx)
		if err != nil {
			return err
		}
		res = BalanceResult{Match: m, Split: split}
		return nil
	})
	if err != nil {
		metrics.IncBalanceRun("error")
		return nil, err
	}

	metrics.IncBalanceRun("ok")
	metrics.ObserveBalanceDuration(time.Since(start).Seconds())
	metrics.ObserveBalanceDifference(res.Split.Diff)
	u.log.Info().
		Str("match_id", matchID).
		Float64("diff", res.Split.Diff).
		Msg("teams balanced")
	return &res, nil
}

func playerIDs(team []balance.Player) []string {
	out := make([]string, len(team))
	for i, p := range team {
		out[i] = p.ID
	}
	return out
}
