package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/reel-studio/internal/telegram"
	"github.com/orgball2608/reel-studio/pkg/config"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot   *tgbotapi.BotAPI
	Logger  logger.Logger
	Channel string
}

func New(opts Opts) (*TelegramImpl, error) {
	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:   tgBot,
		Logger:  opts.Logger.WithComponent("telegram"),
		Channel: "@" + opts.Config.Telegram.Channel,
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)
