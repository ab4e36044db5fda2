package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update represents a Telegram update. Only fields we need.
type Update struct {
	UpdateID int
	Message  *Message
}

type Message struct {
	MessageID int
	From      *User
	Chat      Chat
	Date      int64 // unix seconds
	Text      string
}

type Chat struct {
	ID       int64
	Type     string
	Username string
}

// IsPrivate reports whether the chat is a one-to-one chat with the bot.
func (c Chat) IsPrivate() bool { return c.Type == "private" }

// IsGroup reports whether the chat is a group or a supergroup.
func (c Chat) IsGroup() bool { return c.Type == "group" || c.Type == "supergroup" }

type User struct {
	ID       int64
	Username string
	IsBot    bool
}

// BotCommand describes a bot command for the Telegram menu.
type BotCommand struct {
	Command     string
	Description string
}

// Bot is the part of tgbotapi.BotAPI used by Client.
type Bot interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client is a small wrapper around the Telegram Bot API.
type Client struct {
	bot         Bot
	pollTimeout int
}

// NewClient authorizes the bot with the given token.
func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return NewClientWithBot(bot), nil
}

// NewClientWithBot wraps an existing bot implementation.
func NewClientWithBot(bot Bot) *Client {
	return &Client{bot: bot, pollTimeout: 30}
}

// SendMessage sends text to the chat. A non-nil keyboard is shown as a
// one-time reply keyboard. It returns the id of the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]string) (int, error) {
	return c.send(ctx, chatID, text, keyboard, 0)
}

// SendReply sends text as a reply to another message of the chat.
func (c *Client) SendReply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	return c.send(ctx, chatID, text, nil, replyTo)
}

func (c *Client) send(ctx context.Context, chatID int64, text string, keyboard [][]string, replyTo int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if keyboard != nil {
		msg.ReplyMarkup = replyKeyboard(keyboard)
	}
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram: send message: %w", err)
	}
	return sent.MessageID, nil
}

func replyKeyboard(keyboard [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// GetUpdates long-polls for updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = c.pollTimeout
	cfg.AllowedUpdates = []string{"message"}
	raw, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("telegram: get updates: %w", err)
	}
	out := make([]Update, 0, len(raw))
	for _, u := range raw {
		out = append(out, Update{UpdateID: u.UpdateID, Message: convertMessage(u.Message)})
	}
	return out, nil
}

func convertMessage(m *tgbotapi.Message) *Message {
	if m == nil || m.Chat == nil {
		return nil
	}
	msg := &Message{
		MessageID: m.MessageID,
		Chat:      Chat{ID: m.Chat.ID, Type: m.Chat.Type, Username: m.Chat.UserName},
		Date:      int64(m.Date),
		Text:      m.Text,
	}
	if m.From != nil {
		msg.From = &User{ID: m.From.ID, Username: m.From.UserName, IsBot: m.From.IsBot}
	}
	return msg
}

// SetCommands registers the bot commands shown in the Telegram UI.
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmds := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: cmd.Command, Description: cmd.Description})
	}
	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("telegram: set commands: %w", err)
	}
	return nil
}
