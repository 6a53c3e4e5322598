package publish

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"

	"jobrelay/internal/domain"
)

// channel lets us address @username channels; telebot's Chat.Recipient only
// speaks numeric ids.
type channel string

func (c channel) Recipient() string { return string(c) }

// TelegramSink posts formatted records to one Telegram channel. Creating the
// sink performs a getMe round-trip, which doubles as the startup connectivity
// check.
type TelegramSink struct {
	bot        *tele.Bot
	channel    channel
	channelURL string
	log        zerolog.Logger
}

func NewTelegramSink(token, channelID string, log zerolog.Logger) (*TelegramSink, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if strings.TrimSpace(channelID) == "" {
		return nil, fmt.Errorf("telegram channel is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return &TelegramSink{
		bot:        b,
		channel:    channel(channelID),
		channelURL: channelLink(channelID),
		log:        log.With().Str("component", "sink").Logger(),
	}, nil
}

// channelLink turns an @username channel id into its public t.me URL. Numeric
// chat ids have no public link, so those get no channel button.
func channelLink(id string) string {
	if name, ok := strings.CutPrefix(id, "@"); ok && name != "" {
		return "https://t.me/" + name
	}
	return ""
}

func inlineButtons(applyURL, channelURL string) *tele.ReplyMarkup {
	row := []tele.InlineButton{{Text: "📋 APPLY", URL: applyURL}}
	if channelURL != "" {
		row = append(row, tele.InlineButton{Text: "📢 MORE JOBS", URL: channelURL})
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
}

// Send posts one record. telebot has no per-call context, so the surrounding
// cycle's pacing and timeouts bound how often this runs.
func (s *TelegramSink) Send(ctx context.Context, p domain.Posting) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg, err := s.bot.Send(s.channel, FormatMessage(p), &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: inlineButtons(p.Identity, s.channelURL),
	})
	if err != nil {
		return "", fmt.Errorf("telegram send: %w", err)
	}

	s.log.Info().Str("url", p.Identity).Int("message_id", msg.ID).Msg("posted")
	return strconv.Itoa(msg.ID), nil
}
