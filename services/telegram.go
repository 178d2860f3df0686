package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"weatherstation/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// botSender is the part of tgbotapi.BotAPI the notifier needs
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier alerts a chat when the weather turns bad and again when it
// recovers. While it stays bad, reminders are limited to one per cooldown.
type TelegramNotifier struct {
	bot      botSender
	chatID   int64
	deviceID string
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time

	lastQuality models.Quality
	badSince    time.Time
	lastAlert   time.Time
}

func NewTelegramNotifier(token, chatID, deviceID string, cooldown time.Duration, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %w", err)
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing chat ID: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	return newTelegramNotifier(bot, id, deviceID, cooldown, logger), nil
}

func newTelegramNotifier(bot botSender, chatID int64, deviceID string, cooldown time.Duration, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      bot,
		chatID:   chatID,
		deviceID: deviceID,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify inspects the latest record and sends an alert or recovery message when due
func (ts *TelegramNotifier) Notify(record models.Record) error {
	now := ts.now()
	previous := ts.lastQuality
	ts.lastQuality = record.WeatherQuality

	if record.WeatherQuality == models.QualityBad {
		if previous != models.QualityBad {
			ts.badSince = now
		} else if now.Sub(ts.lastAlert) < ts.cooldown {
			ts.logger.Debug("Throttling alert", zap.String("device_id", ts.deviceID))
			return nil
		}
		ts.lastAlert = now
		if err := ts.send(ts.formatBadWeatherMessage(record, now.Sub(ts.badSince))); err != nil {
			return fmt.Errorf("error sending bad weather alert: %w", err)
		}
		ts.logger.Info("Sent bad weather alert", zap.String("device_id", ts.deviceID))
		return nil
	}

	if previous == models.QualityBad {
		if err := ts.send(ts.formatRecoveryMessage(record, now.Sub(ts.badSince))); err != nil {
			return fmt.Errorf("error sending recovery alert: %w", err)
		}
		ts.logger.Info("Sent weather recovery alert", zap.String("device_id", ts.deviceID))
	}
	return nil
}

func (ts *TelegramNotifier) formatBadWeatherMessage(record models.Record, badFor time.Duration) string {
	var sb strings.Builder

	sb.WriteString("🚨 <b>BAD WEATHER ALERT</b> 🚨\n\n")
	sb.WriteString(fmt.Sprintf("📱 <b>Station:</b> %s\n", ts.deviceID))
	sb.WriteString(fmt.Sprintf("🕐 <b>Time:</b> %s\n", record.Time().Format("2006-01-02 15:04:05")))
	if badFor > 0 {
		sb.WriteString(fmt.Sprintf("⏱️ <b>Bad for:</b> %s\n", formatDuration(badFor)))
	}
	sb.WriteString("\n")
	ts.writeReadings(&sb, record)
	sb.WriteString(fmt.Sprintf("\n%s <b>Status:</b> %s", models.GetQualityEmoji(record.WeatherQuality), strings.ToUpper(string(record.WeatherQuality))))

	return sb.String()
}

func (ts *TelegramNotifier) formatRecoveryMessage(record models.Record, badFor time.Duration) string {
	var sb strings.Builder

	sb.WriteString("✅ <b>WEATHER RECOVERED</b> ✅\n\n")
	sb.WriteString(fmt.Sprintf("📱 <b>Station:</b> %s\n", ts.deviceID))
	sb.WriteString(fmt.Sprintf("⏱️ <b>Bad weather lasted:</b> %s\n\n", formatDuration(badFor)))
	ts.writeReadings(&sb, record)
	sb.WriteString(fmt.Sprintf("\n%s <b>Status:</b> %s", models.GetQualityEmoji(record.WeatherQuality), strings.ToUpper(string(record.WeatherQuality))))

	return sb.String()
}

func (ts *TelegramNotifier) writeReadings(sb *strings.Builder, record models.Record) {
	sb.WriteString("📊 <b>Current Readings:</b>\n")
	sb.WriteString(fmt.Sprintf("🌡️ Temperature: %.1f°C (%s)\n", record.Temperature, record.WeatherCondition))
	sb.WriteString(fmt.Sprintf("💧 Humidity: %.1f%%\n", record.Humidity))
	sb.WriteString(fmt.Sprintf("☀️ Light: %s (%d)\n", record.LightLevel, record.LightRaw))
	sb.WriteString(fmt.Sprintf("👕 Outfit: %s\n", record.OutfitRecommendation))
}

func (ts *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(ts.chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true

	_, err := ts.bot.Send(msg)
	return err
}

// SendStartupMessage sends a message when the station starts
func (ts *TelegramNotifier) SendStartupMessage(interval time.Duration) error {
	message := fmt.Sprintf("🟢 <b>Weather Station %s Started</b>\n\n"+
		"📡 Uploading readings every %s\n"+
		"💡 Indicators: 🟢 Nice | 🟡 Okay | 🔴 Bad", ts.deviceID, interval)

	return ts.send(message)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0f seconds", d.Seconds())
	} else if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%d min %d sec", minutes, seconds)
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%d days %d hr", days, hours)
}
