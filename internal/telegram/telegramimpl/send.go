package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	mediaPhoto = iota + 1
	mediaVideo
)

// captionLimit is Telegram's maximum media caption length in characters.
const captionLimit = 1024

// SendVideo uploads a video file to the configured channel
func (tg *TelegramImpl) SendVideo(path, caption string) error {
	return tg.sendFile(tgbotapi.FilePath(path), caption, mediaVideo)
}

// SendPhoto uploads an image file to the configured channel
func (tg *TelegramImpl) SendPhoto(path, caption string) error {
	return tg.sendFile(tgbotapi.FilePath(path), caption, mediaPhoto)
}

func (tg *TelegramImpl) sendFile(data tgbotapi.RequestFileData, caption string, dataType int) error {
	tg.Logger.Info("Sending media to channel", "channel", tg.Channel, "type", getMediaTypeName(dataType))
	caption = truncate(caption, captionLimit)

	var err error
	switch dataType {
	case mediaPhoto:
		photoMsg := tgbotapi.NewPhotoToChannel(tg.Channel, data)
		photoMsg.Caption = caption
		_, err = tg.TgBot.Send(photoMsg)
	case mediaVideo:
		videoConfig := tgbotapi.NewVideo(0, data)
		videoConfig.ChannelUsername = tg.Channel
		videoConfig.Caption = caption
		videoConfig.SupportsStreaming = true
		_, err = tg.TgBot.Send(videoConfig)
	default:
		return fmt.Errorf("unsupported media type: %d", dataType)
	}

	if err != nil {
		tg.Logger.Error("Error sending media to channel",
			"channel", tg.Channel,
			"type", getMediaTypeName(dataType),
			"error", err)
		return fmt.Errorf("failed to send %s to channel: %w", getMediaTypeName(dataType), err)
	}

	tg.Logger.Info("Successfully sent media to channel",
		"channel", tg.Channel,
		"type", getMediaTypeName(dataType))
	return nil
}

// SendMessageToChannel sends a MarkdownV2 text message to the configured
// channel. Callers escape their text.
func (tg *TelegramImpl) SendMessageToChannel(text string) error {
	newMsg := tgbotapi.NewMessageToChannel(tg.Channel, text)
	newMsg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := tg.TgBot.Send(newMsg); err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", tg.Channel,
			"error", err)
		return fmt.Errorf("failed to send message to channel: %w", err)
	}

	tg.Logger.Info("Message sent to channel", "channel", tg.Channel)
	return nil
}

func getMediaTypeName(dataType int) string {
	switch dataType {
	case mediaPhoto:
		return "photo"
	case mediaVideo:
		return "video"
	default:
		return "unknown media"
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
