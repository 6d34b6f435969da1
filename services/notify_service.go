package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai_prompt_factory/config"
	"ai_prompt_factory/models"
)

// Notifier 运营通知
type Notifier interface {
	Notify(ctx context.Context, htmlText string) error
}

// NopNotifier 未配置通知渠道时使用
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) error { return nil }

// messageSender 抽象 tgbotapi.BotAPI.Send
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier 通过 Telegram 机器人发送HTML消息
type TelegramNotifier struct {
	api    messageSender
	chatID int64
	log    *slog.Logger
}

// NewNotifier 缺少 token 或 chat id 时返回 NopNotifier
func NewNotifier(cfg config.TelegramConfig, log *slog.Logger) (Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		log.Info("未配置 Telegram，运营通知已关闭")
		return NopNotifier{}, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("初始化 Telegram 机器人失败: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: cfg.ChatID, log: log}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, htmlText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, htmlText)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		n.log.Error("发送 Telegram 消息失败", "error", err)
		return err
	}
	return nil
}

func formatDollars(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

// FormatDailyMessage 每日运行结果通知
func FormatDailyMessage(report models.DailyReport, generated, published int) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Daily Prompt Factory Report</b>\n")
	b.WriteString(fmt.Sprintf("📅 %s\n\n", html.EscapeString(report.Date)))
	b.WriteString(fmt.Sprintf("📝 Generated: %s\n", humanize.Comma(int64(generated))))
	b.WriteString(fmt.Sprintf("🛒 Published: %s\n", humanize.Comma(int64(published))))
	b.WriteString(fmt.Sprintf("💰 Revenue: %s (%s sales)\n", formatDollars(report.DailyRevenue), humanize.Comma(int64(report.DailySales))))
	b.WriteString(fmt.Sprintf("⭐ Avg quality: %.2f\n", report.AvgQualityScore))
	b.WriteString(fmt.Sprintf("🏆 Top niche: %s", html.EscapeString(report.TopNiche)))
	return b.String()
}

// FormatWeeklyMessage 周报通知
func FormatWeeklyMessage(report models.WeeklyReport) string {
	var b strings.Builder
	b.WriteString("📊 <b>Weekly Report</b>\n")
	b.WriteString(fmt.Sprintf("%s\n\n", html.EscapeString(report.Period)))
	b.WriteString(fmt.Sprintf("Products: %s\n", humanize.Comma(int64(report.TotalProducts))))
	b.WriteString(fmt.Sprintf("Sales: %s\n", humanize.Comma(int64(report.TotalSales))))
	b.WriteString(fmt.Sprintf("Revenue: %s\n", formatDollars(report.TotalRevenue)))
	b.WriteString(fmt.Sprintf("Conversion: %.1f%%\n", report.ConversionRate))
	for i, n := range report.TopNiches {
		b.WriteString(fmt.Sprintf("%s %s (%d)\n", humanize.Ordinal(i+1), html.EscapeString(n.Niche), n.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAlertMessage 错误告警
func FormatAlertMessage(task string, err error) string {
	return fmt.Sprintf("🚨 <b>Prompt Factory alert</b>\nTask: %s\nError: <code>%s</code>",
		html.EscapeString(task), html.EscapeString(err.Error()))
}
