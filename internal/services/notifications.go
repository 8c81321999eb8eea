package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const DefaultTelegramURL = "https://api.telegram.org"

type NotifierOptions struct {
	Mailer      Mailer
	TelegramURL string
	BookingURL  string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Notifier sends alerts over email and Telegram. It keeps no per-user state.
type Notifier struct {
	mailer      Mailer
	telegramURL string
	bookingURL  string
	client      *http.Client
	log         *zap.Logger
}

func NewNotifier(opts NotifierOptions) *Notifier {
	n := &Notifier{
		mailer:      opts.Mailer,
		telegramURL: opts.TelegramURL,
		bookingURL:  opts.BookingURL,
		client:      opts.HTTPClient,
		log:         opts.Logger,
	}

	if n.telegramURL == "" {
		n.telegramURL = DefaultTelegramURL
	}

	if n.client == nil {
		n.client = &http.Client{Timeout: 15 * time.Second}
	}

	if n.log == nil {
		n.log = zap.NewNop()
	}

	return n
}

// SendEmail wraps message in the branded template and delivers it.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, message string) error {
	if n.mailer == nil {
		return ErrMailerNotConfigured
	}

	body, err := renderEmail(message, n.bookingURL)

	if err != nil {
		return err
	}

	if err := n.mailer.SendHTML(ctx, to, subject, body); err != nil {
		return err
	}

	n.log.Info("email notification sent", zap.String("to", to))

	return nil
}

// chatRecipient lets telebot address numeric ids and @channel names alike.
type chatRecipient string

func (c chatRecipient) Recipient() string {
	return string(c)
}

// SendTelegram posts text through the bot API sendMessage method. A non-OK
// API response is returned as an error.
func (n *Notifier) SendTelegram(ctx context.Context, botToken, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     n.telegramURL,
		Token:   botToken,
		Client:  n.client,
		Offline: true,
	})

	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if _, err := bot.Send(chatRecipient(chatID), text, tele.ModeHTML); err != nil {
		return fmt.Errorf("telegram API error: %w", err)
	}

	n.log.Info("telegram notification sent", zap.String("chat_id", chatID))

	return nil
}

func (n *Notifier) TestEmail(ctx context.Context, address string) bool {
	if err := n.SendEmail(ctx, address, testEmailSubject, testEmailMessage); err != nil {
		n.log.Warn("email test failed", zap.String("to", address), zap.Error(err))
		return false
	}
	return true
}

func (n *Notifier) TestTelegram(ctx context.Context, botToken, chatID string) bool {
	if err := n.SendTelegram(ctx, botToken, chatID, testTelegramText); err != nil {
		n.log.Warn("telegram test failed", zap.String("chat_id", chatID), zap.Error(err))
		return false
	}
	return true
}
