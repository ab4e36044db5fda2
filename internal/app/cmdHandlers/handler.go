package cmdHandlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/service"
	"github.com/ilinovom/fido5011-bot/pkg/telegram"
	"github.com/rs/zerolog"
)

const (
	StartCmd = "/start"
	HelpCmd  = "/help"
)

// Sender is the part of the Telegram client used by the handlers.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]string) (int, error)
	SendReply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
}

// Decider decides whether a group message triggers an announcement.
type Decider interface {
	Decide(ctx context.Context, userID, now int64) service.Outcome
}

type CmdHandler struct {
	tgClient    Sender
	userService *service.UserService
	settings    *service.SettingsService
	announcer   Decider
	messages    map[string]string
	log         zerolog.Logger
	now         func() time.Time

	mu    sync.Mutex
	convs map[int64]DialogueState
}

func NewCmdHandler(tgClient Sender, userService *service.UserService, settings *service.SettingsService, announcer Decider, messages map[string]string, log zerolog.Logger) *CmdHandler {
	return &CmdHandler{
		tgClient:    tgClient,
		userService: userService,
		settings:    settings,
		announcer:   announcer,
		messages:    messages,
		log:         log.With().Str("component", "handler").Logger(),
		now:         time.Now,
		convs:       map[int64]DialogueState{},
	}
}

// HandleMessage routes a message to the dialogue (private chats) or to the
// announcer (groups). Messages from bots are ignored.
func (c *CmdHandler) HandleMessage(ctx context.Context, m *telegram.Message) {
	if m == nil || m.From == nil || m.From.IsBot {
		return
	}
	switch {
	case m.Chat.IsPrivate():
		c.handlePrivate(ctx, m)
	case m.Chat.IsGroup():
		c.handleGroup(ctx, m)
	}
}

// handleGroup announces the sender's address when the announcer allows it.
// Commands are left to the group's moderation bots.
func (c *CmdHandler) handleGroup(ctx context.Context, m *telegram.Message) {
	if strings.HasPrefix(m.Text, "/") {
		return
	}
	out := c.announcer.Decide(ctx, m.From.ID, m.Date)
	if out.Kind != service.Announce {
		c.log.Debug().Int64("user_id", m.From.ID).Stringer("reason", out.Reason).Msg("announcement suppressed")
		return
	}
	c.log.Info().Int64("user_id", m.From.ID).Int64("chat_id", m.Chat.ID).Msg("announce")
	if _, err := c.tgClient.SendReply(ctx, m.Chat.ID, m.MessageID, out.Text); err != nil {
		c.log.Error().Err(err).Int64("chat_id", m.Chat.ID).Msg("send announcement")
	}
}

func (c *CmdHandler) handlePrivate(ctx context.Context, m *telegram.Message) {
	st, known := c.state(m.Chat.ID)
	if known && strings.TrimSpace(m.Text) == StartCmd {
		st = StartState{}
	}
	c.setState(m.Chat.ID, c.continueDialogue(ctx, m, st))
}

// state returns the dialogue state of the chat. A chat without a state is
// treated as interrupted by a restart.
func (c *CmdHandler) state(chatID int64) (DialogueState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.convs[chatID]
	if !ok {
		return StartState{Restarted: true}, false
	}
	return st, true
}

func (c *CmdHandler) setState(chatID int64, st DialogueState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.convs[chatID] = st
}

// sendMessage is a small wrapper around the Telegram client that logs failures.
func (c *CmdHandler) sendMessage(ctx context.Context, chatID int64, text string, kb [][]string) {
	if _, err := c.tgClient.SendMessage(ctx, chatID, text, kb); err != nil {
		c.log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send message")
	}
}

// SetCommands registers the list of bot commands with Telegram.
func (c *CmdHandler) SetCommands(ctx context.Context, tg interface {
	SetCommands(ctx context.Context, commands []telegram.BotCommand) error
}) {
	cmds := []telegram.BotCommand{
		{Command: strings.TrimPrefix(StartCmd, "/"), Description: "Open the settings menu"},
		{Command: strings.TrimPrefix(HelpCmd, "/"), Description: "Show the settings menu"},
	}
	if err := tg.SetCommands(ctx, cmds); err != nil {
		c.log.Warn().Err(err).Msg("set commands")
	}
}
