package tg

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/models/bottypes"
	"github.com/shoksin/walletBot/internal/models/messages"
)

const txtProcessingFailure = "❌ Something went wrong. Please try again later."

type HandlerFunc func(tgUpdate tgbotapi.Update, c *Client, msgModel *messages.Model)

func (f HandlerFunc) RunFunc(tgUpdate tgbotapi.Update, c *Client, msgModel *messages.Model) {
	f(tgUpdate, c, msgModel)
}

type Client struct {
	client                *tgbotapi.BotAPI
	handlerProcessingFunc HandlerFunc // Функция обработки входящих сообщений.
}

type TokenGetter interface {
	Token() string
}

func New(tokenGetter TokenGetter, handlerProcessingFunc HandlerFunc) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(tokenGetter.Token())
	if err != nil {
		return nil, fmt.Errorf("error NewBotAPI: %v", err)
	}

	return &Client{
		client:                client,
		handlerProcessingFunc: handlerProcessingFunc,
	}, nil
}

func (c *Client) SendMessage(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = "markdown"
	if _, err := c.client.Send(msg); err != nil {
		return fmt.Errorf("error sending message client.Send: %v", err)
	}
	return nil
}

// ShowInlineButtons Отправка сообщения с inline-кнопками.
func (c *Client) ShowInlineButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keyboardRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.DisplayName, button.Value))
		}
		rows = append(rows, keyboardRow)
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = "markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := c.client.Send(msg); err != nil {
		return fmt.Errorf("error sending inline buttons client.Send: %v", err)
	}
	return nil
}

// ShowReplyButtons Отправка сообщения с reply-клавиатурой.
func (c *Client) ShowReplyButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		keyboardRow := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewKeyboardButton(button.DisplayName))
		}
		rows = append(rows, keyboardRow)
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = "markdown"
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	if _, err := c.client.Send(msg); err != nil {
		return fmt.Errorf("error sending reply buttons client.Send: %v", err)
	}
	return nil
}

// RequestPhoneNumber Запрос контакта пользователя (кнопка "поделиться номером").
func (c *Client) RequestPhoneNumber(text string, buttonLabel string, userID int64) error {
	button := tgbotapi.KeyboardButton{Text: buttonLabel, RequestContact: true}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard([]tgbotapi.KeyboardButton{button})
	if _, err := c.client.Send(msg); err != nil {
		return fmt.Errorf("error sending contact request client.Send: %v", err)
	}
	return nil
}

// SendPhoto Отправка изображения из локального файла.
func (c *Client) SendPhoto(filePath string, caption string, userID int64) error {
	photo := tgbotapi.NewPhoto(userID, tgbotapi.FilePath(filePath))
	photo.Caption = caption
	if _, err := c.client.Send(photo); err != nil {
		return fmt.Errorf("error sending photo client.Send: %v", err)
	}
	return nil
}

// ListenUpdates Цикл получения и обработки обновлений. Сообщения обрабатываются
// последовательно: шаги диалога одного пользователя не перемешиваются.
func (c *Client) ListenUpdates(msgModel *messages.Model) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := c.client.GetUpdatesChan(updateConfig)

	logger.Info("Start listening for tg updates")
	for update := range updates {
		c.handlerProcessingFunc.RunFunc(update, c, msgModel)
	}
}

// ProcessingMessages Базовый обработчик обновления: конвертация в событие
// модели и ответ на callback. Наверх поднимаются только сбои хранилища,
// пользователю они показываются общим сообщением об ошибке.
func ProcessingMessages(tgUpdate tgbotapi.Update, c *Client, msgModel *messages.Model) {
	msg, ok := messageFromUpdate(tgUpdate)
	if !ok {
		return
	}

	if err := msgModel.IncomingMessage(msg); err != nil {
		logger.Error("Error processing message", "userID", msg.UserID, "err", err)
		if sendErr := c.SendMessage(msg.UserID, txtProcessingFailure); sendErr != nil {
			logger.Error("Error sending failure notice", "userID", msg.UserID, "err", sendErr)
		}
	}

	if tgUpdate.CallbackQuery != nil {
		callback := tgbotapi.NewCallback(tgUpdate.CallbackQuery.ID, "")
		if _, err := c.client.Request(callback); err != nil {
			logger.Debug("Error answering callback query", "err", err)
		}
	}
}

func messageFromUpdate(tgUpdate tgbotapi.Update) (messages.Message, bool) {
	if tgUpdate.CallbackQuery != nil {
		return messages.Message{
			UserID:     tgUpdate.CallbackQuery.From.ID,
			Data:       tgUpdate.CallbackQuery.Data,
			IsCallback: true,
			Date:       time.Now(),
		}, true
	}

	if tgUpdate.Message == nil || tgUpdate.Message.From == nil {
		return messages.Message{}, false
	}

	msg := messages.Message{
		UserID:    tgUpdate.Message.From.ID,
		Text:      tgUpdate.Message.Text,
		Username:  tgUpdate.Message.From.UserName,
		FirstName: tgUpdate.Message.From.FirstName,
		LastName:  tgUpdate.Message.From.LastName,
		Date:      time.Unix(int64(tgUpdate.Message.Date), 0),
	}

	if tgUpdate.Message.Contact != nil {
		msg.IsContact = true
		msg.Phone = tgUpdate.Message.Contact.PhoneNumber
	}

	return msg, true
}
