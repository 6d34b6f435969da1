package services

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_prompt_factory/config"
	"ai_prompt_factory/logger"
	"ai_prompt_factory/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotify(t *testing.T) {
	sender := &fakeSender{}
	n := &TelegramNotifier{api: sender, chatID: 42, log: logger.Discard()}

	require.NoError(t, n.Notify(context.Background(), "<b>hi</b>"))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "<b>hi</b>", msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.True(t, msg.DisableWebPagePreview)
}

func TestTelegramNotifyErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	n := &TelegramNotifier{api: sender, chatID: 42, log: logger.Discard()}
	assert.Error(t, n.Notify(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "x"), context.Canceled)
	assert.Len(t, sender.sent, 1)
}

func TestNewNotifierWithoutConfig(t *testing.T) {
	n, err := NewNotifier(config.TelegramConfig{}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)

	n, err = NewNotifier(config.TelegramConfig{BotToken: "token"}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
}

func TestFormatDailyMessage(t *testing.T) {
	msg := FormatDailyMessage(models.DailyReport{
		Date:            "2026-03-01",
		DailyRevenue:    1234.5,
		DailySales:      1200,
		AvgQualityScore: 0.85,
		TopNiche:        "Business & Marketing",
	}, 12, 10)

	assert.Contains(t, msg, "2026-03-01")
	assert.Contains(t, msg, "Generated: 12")
	assert.Contains(t, msg, "Published: 10")
	assert.Contains(t, msg, "$1,234")
	assert.Contains(t, msg, "1,200 sales")
	assert.Contains(t, msg, "0.85")
	assert.Contains(t, msg, "Business &amp; Marketing")
}

func TestFormatWeeklyMessage(t *testing.T) {
	msg := FormatWeeklyMessage(models.WeeklyReport{
		Period:        "2026-02-22 to 2026-03-01",
		TotalProducts: 30,
		TotalSales:    5,
		TotalRevenue:  225,
		TopNiches: []models.NicheCount{
			{Niche: "Business & Marketing", Count: 12},
			{Niche: "Personal Productivity", Count: 8},
		},
	})

	assert.Contains(t, msg, "Products: 30")
	assert.Contains(t, msg, "$225")
	assert.Contains(t, msg, "1st Business &amp; Marketing (12)")
	assert.Contains(t, msg, "2nd Personal Productivity (8)")
}

func TestFormatAlertMessageEscapes(t *testing.T) {
	msg := FormatAlertMessage("health_check", errors.New("dial <tcp>"))
	assert.Contains(t, msg, "health_check")
	assert.Contains(t, msg, "dial &lt;tcp&gt;")
}
