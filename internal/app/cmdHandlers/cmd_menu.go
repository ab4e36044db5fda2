package cmdHandlers

import (
	"context"
	"strings"

	"github.com/ilinovom/fido5011-bot/pkg/telegram"
)

// handleStart shows the menu for any message and waits for a command.
func (c *CmdHandler) handleStart(ctx context.Context, m *telegram.Message, s StartState) DialogueState {
	next := AwaitingCommandState{UserID: m.From.ID, IsAdmin: c.settings.IsAdmin(m.From.ID)}
	text := c.msg("menu")
	if s.Restarted {
		text = c.msg("restarted") + "\n\n" + text
	}
	c.sendMessage(ctx, m.Chat.ID, text, menuKeyboard(next.IsAdmin))
	return next
}

func (c *CmdHandler) handleAwaitingCommand(ctx context.Context, m *telegram.Message, s AwaitingCommandState) DialogueState {
	switch strings.TrimSpace(m.Text) {
	case LabelChangeDirectory:
		descr, err := c.userService.Descr(ctx, s.UserID)
		if err != nil {
			c.log.Error().Err(err).Int64("user_id", s.UserID).Msg("load descr")
			c.sendMessage(ctx, m.Chat.ID, c.msg("storage_error"), nil)
			return StartState{}
		}
		text := c.msg("current_descr_empty")
		if descr != "" {
			text = c.msg("current_descr", descr)
		}
		c.sendMessage(ctx, m.Chat.ID, text, cancelKeyboard())
		return AwaitingOriginState{Prior: s}
	case LabelSetInterval:
		gs, err := c.settings.Settings(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("load settings")
			c.sendMessage(ctx, m.Chat.ID, c.msg("storage_error"), nil)
			return StartState{}
		}
		if !gs.IsAdmin(s.UserID) {
			c.log.Warn().Int64("user_id", s.UserID).Msg("set interval without rights")
			c.sendMessage(ctx, m.Chat.ID, c.msg("no_rights"), menuKeyboard(false))
			return s
		}
		c.sendMessage(ctx, m.Chat.ID, c.msg("current_interval", gs.AnnouncementInterval/c.settings.Unit()), cancelKeyboard())
		return AwaitingIntervalState{Prior: s}
	}
	// "/start", "/help" and anything unrecognised show the menu again.
	c.sendMessage(ctx, m.Chat.ID, c.msg("menu"), menuKeyboard(s.IsAdmin))
	return s
}
