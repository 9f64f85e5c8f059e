// Package application composes usecases into high-level bot commands.
// Facade methods return ready-to-send strings so the Telegram adapter just
// forwards them to the chat.
package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"telegram-match-bot/internal/domain"
	"telegram-match-bot/internal/domain/balance"
	"telegram-match-bot/internal/domain/model"
	"telegram-match-bot/internal/usecase"
)

type BotFacade struct {
	PlayerUC  usecase.PlayerUseCase
	MatchUC   usecase.MatchUseCase
	StatsUC   usecase.StatsUseCase
	BalanceUC usecase.BalanceUseCase

	poolSize int
}

func NewBotFacade(
	playerUC usecase.PlayerUseCase,
	matchUC usecase.MatchUseCase,
	statsUC usecase.StatsUseCase,
	balanceUC usecase.BalanceUseCase,
	poolSize int,
) *BotFacade {
	return &BotFacade{
		PlayerUC:  playerUC,
		MatchUC:   matchUC,
		StatsUC:   statsUC,
		BalanceUC: balanceUC,
		poolSize:  poolSize,
	}
}

// HandleRegister registers or refreshes the player and returns a confirmation.
func (b *BotFacade) HandleRegister(ctx context.Context, tgID int64, username, firstName string) (string, error) {
	p, _, err := b.PlayerUC.RegisterOrFetch(ctx, tgID, username, firstName)
	if err != nil {
		return "❌ Ошибка при регистрации", err
	}
	uname := p.Username
	if uname == "" {
		uname = "не указан"
	}
	return fmt.Sprintf(
		"✅ %s успешно зарегистрирован!\n\n"+
			"📋 Ваши данные:\n"+
			"• Имя: %s\n"+
			"• Username: @%s\n\n"+
			"Теперь вы можете участвовать в матчах через +кс",
		p.FirstName, p.FirstName, uname), nil
}

// HandleOpenMatch opens a recruiting session and returns the announcement the
// adapter should send and pin. The returned match carries the ID the adapter
// reports back via RecordPinnedMessage once the pin succeeds.
func (b *BotFacade) HandleOpenMatch(ctx context.Context) (string, *model.Match, error) {
	m, err := b.MatchUC.Open(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrActiveMatchExists) {
			return "❌ Набор игроков уже начат! Используйте /stopgame чтобы завершить текущий набор.", nil, nil
		}
		return "❌ Ошибка при создании матча", nil, err
	}

	mentions := "пока нет участников 👥"
	if players, err := b.PlayerUC.ListAll(ctx); err == nil && len(players) > 0 {
		tags := make([]string, 0, len(players))
		for _, p := range players {
			if p.Username != "" {
				tags = append(tags, "@"+p.Username)
			} else {
				tags = append(tags, p.FirstName)
			}
		}
		mentions = strings.Join(tags, " ")
	}

	text := fmt.Sprintf(
		"🎮 Набор на игру открыт! Ставьте +кс чтобы присоединиться!\n\n"+
			"Зарегистрированные игроки: %s\n\n"+
			"Текущий пул: 0/%d",
		mentions, b.poolSize)
	return text, m, nil
}

// RecordPinnedMessage stores the pinned announcement's message ID so later
// pool changes can edit it and /stopgame can unpin it.
func (b *BotFacade) RecordPinnedMessage(ctx context.Context, matchID string, messageID int64) error {
	return b.MatchUC.SetPinnedMessage(ctx, matchID, messageID)
}

// HandleStopGame deactivates the session. The returned message ID (when
// non-zero) is the pinned announcement the adapter should unpin.
func (b *BotFacade) HandleStopGame(ctx context.Context) (string, int64, error) {
	m, err := b.MatchUC.Stop(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveMatch) {
			return "❌ Сейчас нет активного набора игроков.", 0, nil
		}
		return "❌ Ошибка при остановке матча", 0, err
	}
	return "✅ Набор игроков остановлен. Пул очищен.", m.PinnedMessageID, nil
}

// JoinOutcome tells the adapter what to send and whether the pool just
// filled, which triggers the balance announcement.
type JoinOutcome struct {
	Reply   string
	MatchID string
	Full    bool
}

// HandleJoin implements the +кс trigger: registers the sender if needed and
// puts them into the pool.
func (b *BotFacade) HandleJoin(ctx context.Context, tgID int64, username, firstName string) (*JoinOutcome, error) {
	p, _, err := b.PlayerUC.RegisterOrFetch(ctx, tgID, username, firstName)
	if err != nil {
		return &JoinOutcome{Reply: "❌ Ошибка при регистрации игрока"}, err
	}

	res, err := b.MatchUC.Join(ctx, p.ID)
	if err != nil {
		var cd *usecase.CooldownError
		switch {
		case errors.Is(err, domain.ErrNoActiveMatch):
			return &JoinOutcome{Reply: "❌ Набор игроков не активен. Используйте /game чтобы начать набор."}, nil
		case errors.As(err, &cd):
			secs := int(math.Ceil(cd.Remaining.Seconds()))
			return &JoinOutcome{Reply: fmt.Sprintf("⏳ Подожди %d секунд перед повторным присоединением.", secs)}, nil
		case errors.Is(err, domain.ErrAlreadyInPool):
			return &JoinOutcome{Reply: fmt.Sprintf("%s, ты уже в пуле!", p.FirstName)}, nil
		case errors.Is(err, domain.ErrPoolFull):
			return &JoinOutcome{Reply: fmt.Sprintf("❌ Пул уже собран! %d/%d", b.poolSize, b.poolSize)}, nil
		}
		return &JoinOutcome{Reply: "❌ Ошибка при добавлении в пул"}, err
	}

	return &JoinOutcome{
		Reply:   fmt.Sprintf("✅ %s добавлен в пул! Сейчас в пуле: %d/%d", p.FirstName, res.Count, b.poolSize),
		MatchID: res.Match.ID,
		Full:    res.Full,
	}, nil
}

// HandleLeave implements the -кс trigger.
func (b *BotFacade) HandleLeave(ctx context.Context, tgID int64, firstName string) (string, error) {
	p, err := b.PlayerUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "Игрок не найден", nil
		}
		return "", err
	}

	res, err := b.MatchUC.Leave(ctx, p.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActiveMatch):
			return "❌ Набор игроков не активен.", nil
		case errors.Is(err, domain.ErrNotInPool):
			return fmt.Sprintf("%s, тебя нет в пуле.", p.FirstName), nil
		}
		return "", err
	}
	return fmt.Sprintf(
		"❌ %s вышел из пула. Занять слот сможешь через 1 минуту. Сейчас в пуле: %d/%d",
		p.FirstName, res.Count, b.poolSize), nil
}

// HandlePool shows the current pool.
func (b *BotFacade) HandlePool(ctx context.Context) (string, error) {
	m, err := b.MatchUC.Active(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveMatch) {
			return "Нет активного матча. Используйте /game чтобы начать набор.", nil
		}
		return "", err
	}
	players, err := b.MatchUC.Players(ctx, m.ID)
	if err != nil {
		return "", err
	}
	if len(players) == 0 {
		return "Пул пуст. Напиши +кс чтобы присоединиться.", nil
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = "👤 " + p.FirstName
	}
	return fmt.Sprintf("🎮 Текущий пул игроков (%d/%d):\n\n%s",
		len(players), b.poolSize, strings.Join(names, "\n")), nil
}

// PoolMessage renders the text for the pinned announcement after a pool
// change. The second value is the message ID to edit; zero means nothing is
// pinned for the active match.
func (b *BotFacade) PoolMessage(ctx context.Context, matchID string) (string, int64, error) {
	m, err := b.MatchUC.Active(ctx)
	if err != nil || m.ID != matchID {
		return "", 0, err
	}
	players, err := b.MatchUC.Players(ctx, matchID)
	if err != nil {
		return "", 0, err
	}
	list := "Пусто"
	if len(players) > 0 {
		names := make([]string, len(players))
		for i, p := range players {
			names[i] = "👤 " + p.FirstName
		}
		list = strings.Join(names, "\n")
	}
	text := fmt.Sprintf("🎮 Текущий пул игроков (%d/%d):\n\n%s", len(players), b.poolSize, list)
	return text, m.PinnedMessageID, nil
}

// HandleList shows every registered player.
func (b *BotFacade) HandleList(ctx context.Context) (string, error) {
	players, err := b.PlayerUC.ListAll(ctx)
	if err != nil {
		return "", err
	}
	if len(players) == 0 {
		return "Список игроков пуст.", nil
	}
	lines := make([]string, len(players))
	for i, p := range players {
		lines[i] = fmt.Sprintf("%s (@%s)", p.FirstName, p.Username)
	}
	return "👥 Зарегистрированные игроки:\n\n" + strings.Join(lines, "\n"), nil
}

// HandleStats renders a single player's stats (HTML formatted).
func (b *BotFacade) HandleStats(ctx context.Context, username string) (string, error) {
	p, err := b.PlayerUC.GetByUsername(ctx, strings.TrimPrefix(username, "@"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "❌ Игрок не найден", nil
		}
		return "", err
	}
	sum, err := b.StatsUC.Summary(ctx, p.ID)
	if err != nil {
		return "", err
	}
	if sum.Averages.Matches == 0 {
		return fmt.Sprintf("📊 У %s еще нет статистики. Добавьте первую запись через /addstats", p.FirstName), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📊 Статистика %s (@%s)</b>\n\n", p.FirstName, p.Username)
	fmt.Fprintf(&sb, "🎯 <b>Матчей:</b> %d\n", sum.Averages.Matches)
	fmt.Fprintf(&sb, "📈 <b>Средний ADR:</b> %.0f\n", sum.Averages.AvgADR)
	fmt.Fprintf(&sb, "🔫 <b>K/D/A:</b> %.0f/%.0f/%.0f\n", sum.Averages.AvgKills, sum.Averages.AvgDeaths, sum.Averages.AvgAssists)
	fmt.Fprintf(&sb, "⭐ <b>Рейтинг:</b> %.2f\n\n", sum.Averages.AvgRating)
	sb.WriteString("<b>Последние 5 матчей:</b>\n")
	for _, s := range sum.Recent {
		fmt.Fprintf(&sb, "• %s: ADR %.0f (%d/%d/%d)", s.MatchDate.Format("02.01"), s.ADR, s.Kills, s.Deaths, s.Assists)
		if s.Map != "" {
			fmt.Fprintf(&sb, " на %s", s.Map)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// HandleLeaderboard renders the rating top list (HTML formatted).
func (b *BotFacade) HandleLeaderboard(ctx context.Context) (string, error) {
	rows, err := b.StatsUC.Leaderboard(ctx, 10)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "📊 Нет статистики игроков. Добавьте первую запись через /addstats", nil
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("<b>🏆 Топ-10 игроков по рейтингу</b>\n\n")
	for i, r := range rows {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s - ⭐%.1f (ADR: %.0f, K: %.0f, %d матчей)\n",
			medal, r.FirstName, r.AvgRating, r.AvgADR, r.AvgKills, r.Matches)
	}
	sb.WriteString("\n💡 Используйте <code>/stats @username</code> для детальной статистики")
	return sb.String(), nil
}

// HandleAddStats records a stat line for the named player.
func (b *BotFacade) HandleAddStats(ctx context.Context, username string, kills, deaths, assists int, adr float64, mapName string) (string, error) {
	_, err := b.StatsUC.AddForUsername(ctx, username, kills, deaths, assists, adr, mapName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return "❌ Игрок не найден", nil
		case errors.Is(err, domain.ErrInvalidArgument):
			return "Формат: /addstats @username kills deaths assists ADR [map]", nil
		}
		return "❌ Ошибка при добавлении статистики", err
	}
	return fmt.Sprintf("✅ Статистика добавлена для @%s", strings.TrimPrefix(username, "@")), nil
}

// HandleBalanceAnnouncement balances the full pool and renders the team
// announcement with tg://user mentions (HTML formatted).
func (b *BotFacade) HandleBalanceAnnouncement(ctx context.Context, matchID string) (string, error) {
	res, err := b.BalanceUC.Balance(ctx, matchID)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			// Another worker is already announcing this match.
			return "", nil
		}
		return "", err
	}

	players, err := b.MatchUC.Players(ctx, matchID)
	if err != nil {
		return "", err
	}
	mentions := make([]string, len(players))
	for i, p := range players {
		mentions[i] = fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", p.TelegramID, p.FirstName)
	}

	return fmt.Sprintf(
		"🎉 Пул собран! %d/%d\n\n"+
			"⚔️ Команда 1 (сумма ADR: %.1f):\n%s\n\n"+
			"⚔️ Команда 2 (сумма ADR: %.1f):\n%s\n\n"+
			"📊 Разница между командами: %.1f\n\n"+
			"👥 Все участники: %s",
		b.poolSize, b.poolSize,
		res.Split.Sum1, teamNames(res.Split.Team1),
		res.Split.Sum2, teamNames(res.Split.Team2),
		res.Split.Diff,
		strings.Join(mentions, " ")), nil
}

func teamNames(team []balance.Player) string {
	names := make([]string, len(team))
	for i, p := range team {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// HandleHelp returns the command reference (HTML formatted).
func (b *BotFacade) HandleHelp() string {
	return `🎮 <b>CS:GO Бот для балансировки команд</b> 🎯

<b>Основные команды:</b>
/game - Начать набор игроков на матч
/stopgame - Остановить набор игроков
/pool - Показать текущий пул игроков

<b>Статистика игроков:</b>
/stats - Общая статистика всех игроков
/stats @username - Статистика конкретного игрока
/addstats @username kills deaths assists ADR [map] - Добавить статистику

<b>Управление игроками:</b>
/register - Зарегистрироваться
/list - Список всех зарегистрированных игроков

<b>Быстрые действия:</b>
+кс - Присоединиться к текущему матчу
-кс - Выйти из текущего матча

<b>Примеры использования:</b>
• Начать игру: <code>/game</code>
• Добавить статистику: <code>/addstats @ivanov 15 10 5 120 de_dust2</code>
• Посмотреть статистику: <code>/stats @ivanov</code>

📊 <i>Бот автоматически собирает статистику и использует её для балансировки команд!</i>`
}

// HandleUnknown is the fallback for unrecognized commands (HTML formatted).
func (b *BotFacade) HandleUnknown() string {
	return "❌ Неизвестная команда. Используйте /help для просмотра всех доступных команд\n\n" +
		"💡 <b>Основные команды:</b>\n" +
		"/game - Начать матч\n" +
		"/stats - Статистика\n" +
		"/help - Помощь"
}
