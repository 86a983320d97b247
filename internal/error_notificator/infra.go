package error_notificator

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender — то, что нужно от tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	bot         Sender
	adminChatID int64
}

func NewInfra(bot Sender, adminChatID int64) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID}
}

// NewTelegramInfra логинится ботом по токену.
func NewTelegramInfra(token string, adminChatID int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return NewInfra(bot, adminChatID), nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка в speech analyzer\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		return fmt.Errorf("telegram send: %w", sendErr)
	}
	return nil
}
