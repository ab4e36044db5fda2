package cmdHandlers

import (
	"context"
	"strings"

	"github.com/ilinovom/fido5011-bot/pkg/telegram"
)

func (c *CmdHandler) handleAwaitingOrigin(ctx context.Context, m *telegram.Message, s AwaitingOriginState) DialogueState {
	text := strings.TrimSpace(m.Text)
	switch text {
	case CancelInput:
		c.sendMessage(ctx, m.Chat.ID, c.msg("unchanged"), nil)
		return StartState{}
	case "":
		// stickers, photos and other messages without text
		c.sendMessage(ctx, m.Chat.ID, c.msg("current_descr_empty"), cancelKeyboard())
		return s
	}
	if err := c.userService.SetDescr(ctx, s.Prior.UserID, text, c.now().Unix()); err != nil {
		c.log.Error().Err(err).Int64("user_id", s.Prior.UserID).Msg("save descr")
		c.sendMessage(ctx, m.Chat.ID, c.msg("storage_error"), nil)
		return StartState{}
	}
	c.log.Info().Int64("user_id", s.Prior.UserID).Msg("descr updated")
	c.sendMessage(ctx, m.Chat.ID, c.msg("descr_saved"), nil)
	return StartState{}
}
