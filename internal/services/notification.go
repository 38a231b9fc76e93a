package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/models"
)

// notificationTopParties limits how many parties a completion message lists.
const notificationTopParties = 3

// NotificationService pushes run lifecycle messages to a configured
// Telegram chat. With no bot token configured it becomes a no-op.
type NotificationService struct {
	bot     *bot.Bot
	chatID  int64
	logger  *logrus.Logger
	printer *message.Printer
}

// NewNotificationService creates the telegram notifier. An empty bot token
// disables delivery without error so local setups need no telegram account.
func NewNotificationService(cfg config.TelegramConfig, logger *logrus.Logger) *NotificationService {
	var telegramBot *bot.Bot
	if cfg.BotToken != "" {
		b, err := bot.New(cfg.BotToken)
		if err != nil {
			logger.WithError(err).Warn("Telegram bot initialization failed, notifications disabled")
		} else {
			telegramBot = b
		}
	}
	return &NotificationService{
		bot:     telegramBot,
		chatID:  cfg.ChatID,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// NotifyRunCompleted sends a summary message for a completed run.
func (ns *NotificationService) NotifyRunCompleted(ctx context.Context, run *models.ForecastRun, summary *models.ForecastSummary) error {
	return ns.send(ctx, ns.formatCompletion(run, summary))
}

// NotifyRunFailed reports a failed run and its cause.
func (ns *NotificationService) NotifyRunFailed(ctx context.Context, run *models.ForecastRun, cause error) error {
	text := fmt.Sprintf("❌ Forecast run %s for %d failed: %v", run.ID, run.TargetYear, cause)
	return ns.send(ctx, text)
}

func (ns *NotificationService) formatCompletion(run *models.ForecastRun, summary *models.ForecastSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗳 Forecast run %s completed for %d\n", run.ID, run.TargetYear)
	fmt.Fprintf(&b, "Simulations: %s | Historical years: %d\n",
		ns.printer.Sprintf("%d", run.TotalSimulations), run.HistoricalYearsUsed)

	for i, result := range summary.PartyResults {
		if i >= notificationTopParties {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %s%% (%s)\n",
			i+1, result.EntityName, result.PredictedVoteShare.Round(2), result.TrendDirection)
	}
	if len(summary.SwingRegions) > 0 {
		fmt.Fprintf(&b, "Swing regions flagged: %d", len(summary.SwingRegions))
	}
	return b.String()
}

func (ns *NotificationService) send(ctx context.Context, text string) error {
	if ns.bot == nil || ns.chatID == 0 {
		ns.logger.Debug("Telegram notifications disabled, skipping message")
		return nil
	}
	_, err := ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: ns.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
