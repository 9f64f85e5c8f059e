package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/infra/logging"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"register": r.handleRegisterCommand,
		"game":     r.handleGameCommand,
		"stopgame": r.handleStopGameCommand,
		"pool":     r.handlePoolCommand,
		"list":     r.handleListCommand,
		"stats":    r.handleStatsCommand,
		"help":     r.handleHelpCommand,

		"addstats": r.adminOnly(r.handleAddStatsCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if len(r.adminIDsMap) > 0 {
			if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
				return r.SendMessage(ctx, message.Chat.ID, "❌ Команда доступна только администраторам.")
			}
		}
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleRegisterCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleRegister(ctx, message.From.ID, message.From.UserName, message.From.FirstName)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("register failed")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleGameCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, match, err := r.facade.HandleOpenMatch(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("open match failed")
	}
	if match == nil {
		return r.SendMessage(ctx, message.Chat.ID, text)
	}

	sent, err := r.sendReturning(message.Chat.ID, text)
	if err != nil {
		return err
	}
	if err := r.PinMessage(ctx, message.Chat.ID, sent.MessageID); err != nil {
		r.log.Warn().Err(err).Msg("pin failed")
		return nil
	}
	if err := r.facade.RecordPinnedMessage(ctx, match.ID, int64(sent.MessageID)); err != nil {
		r.log.Warn().Err(err).Str("match_id", match.ID).Msg("record pinned message failed")
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleStopGameCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, pinnedID, err := r.facade.HandleStopGame(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("stop game failed")
	}
	if pinnedID != 0 {
		if uerr := r.UnpinMessage(ctx, message.Chat.ID, int(pinnedID)); uerr != nil {
			r.log.Warn().Err(uerr).Msg("unpin failed")
		}
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handlePoolCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandlePool(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("pool failed")
		text = "❌ Ошибка при получении пула"
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleListCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleList(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list failed")
		text = "❌ Ошибка при получении списка игроков"
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleStatsCommand shows one player's stats when a username argument is
// given, otherwise the rating top list.
func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.TrimSpace(message.CommandArguments())
	var (
		text string
		err  error
	)
	if args != "" {
		text, err = r.facade.HandleStats(ctx, strings.Fields(args)[0])
	} else {
		text, err = r.facade.HandleLeaderboard(ctx)
	}
	if err != nil {
		r.log.Error().Err(err).Msg("stats failed")
		return r.SendMessage(ctx, message.Chat.ID, "❌ Ошибка при получении статистики")
	}
	return r.sendHTML(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleAddStatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	username, kills, deaths, assists, adr, mapName, perr := parseAddStatsArgs(message.CommandArguments())
	if perr != nil {
		return r.SendMessage(ctx, message.Chat.ID, "Формат: /addstats @username kills deaths assists ADR [map]")
	}
	text, err := r.facade.HandleAddStats(ctx, username, kills, deaths, assists, adr, mapName)
	if err != nil {
		r.log.Error().Err(err).Str("username", username).Msg("addstats failed")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendHTML(ctx, message.Chat.ID, r.facade.HandleHelp())
}

func (r *RealTelegramBotAdapter) handleJoin(ctx context.Context, message *tgbotapi.Message) error {
	out, err := r.facade.HandleJoin(ctx, message.From.ID, message.From.UserName, message.From.FirstName)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("join failed")
	}
	if err := r.SendMessage(ctx, message.Chat.ID, out.Reply); err != nil {
		return err
	}
	if out.MatchID == "" {
		return nil
	}

	r.refreshPinnedPool(ctx, message.Chat.ID, out.MatchID)

	if out.Full {
		text, err := r.facade.HandleBalanceAnnouncement(ctx, out.MatchID)
		if err != nil {
			r.log.Error().Err(err).Str("match_id", out.MatchID).Msg("balance failed")
			return r.SendMessage(ctx, message.Chat.ID, "❌ Ошибка при балансировке команд")
		}
		if text != "" {
			return r.sendHTML(ctx, message.Chat.ID, text)
		}
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleLeave(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleLeave(ctx, message.From.ID, message.From.FirstName)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("leave failed")
		text = "❌ Ошибка при выходе из пула"
	}
	if err := r.SendMessage(ctx, message.Chat.ID, text); err != nil {
		return err
	}
	if m, aerr := r.facade.MatchUC.Active(ctx); aerr == nil {
		r.refreshPinnedPool(ctx, message.Chat.ID, m.ID)
	}
	return nil
}

// refreshPinnedPool keeps the pinned announcement in sync with the pool.
// Failures are logged only: an outdated pin is not worth failing the command.
func (r *RealTelegramBotAdapter) refreshPinnedPool(ctx context.Context, chatID int64, matchID string) {
	text, pinnedID, err := r.facade.PoolMessage(ctx, matchID)
	if err != nil {
		if !errors.Is(err, domain.ErrNoActiveMatch) {
			r.log.Warn().Err(err).Str("match_id", matchID).Msg("pool message render failed")
		}
		return
	}
	if pinnedID == 0 || text == "" {
		return
	}
	if err := r.EditMessage(ctx, chatID, int(pinnedID), text); err != nil {
		r.log.Warn().Err(err).Msg("pinned message edit failed")
	}
}

// parseAddStatsArgs parses "@username kills deaths assists ADR [map]".
func parseAddStatsArgs(args string) (username string, kills, deaths, assists int, adr float64, mapName string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 5 {
		err = domain.ErrInvalidArgument
		return
	}
	username = strings.TrimPrefix(fields[0], "@")
	if username == "" {
		err = domain.ErrInvalidArgument
		return
	}
	if kills, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if deaths, err = strconv.Atoi(fields[2]); err != nil {
		return
	}
	if assists, err = strconv.Atoi(fields[3]); err != nil {
		return
	}
	if adr, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return
	}
	if len(fields) > 5 {
		mapName = fields[5]
	}
	return
}
