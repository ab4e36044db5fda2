package cmdHandlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/ilinovom/fido5011-bot/pkg/telegram"
)

// handleAwaitingInterval is an admin-only step that changes the global
// announcement interval.
func (c *CmdHandler) handleAwaitingInterval(ctx context.Context, m *telegram.Message, s AwaitingIntervalState) DialogueState {
	text := strings.TrimSpace(m.Text)
	if text == CancelInput {
		c.sendMessage(ctx, m.Chat.ID, c.msg("unchanged"), nil)
		return StartState{}
	}
	// rights are checked again on input
	if !c.settings.IsAdmin(s.Prior.UserID) {
		c.sendMessage(ctx, m.Chat.ID, c.msg("no_rights"), nil)
		return StartState{}
	}
	units, err := strconv.ParseInt(text, 10, 64)
	if err == nil && units < 0 {
		err = strconv.ErrRange
	}
	var seconds int64
	if err == nil {
		seconds, err = c.settings.ToSeconds(units)
	}
	if err != nil {
		c.sendMessage(ctx, m.Chat.ID, c.msg("interval_invalid", text), nil)
		return StartState{}
	}
	if err := c.settings.SetInterval(ctx, seconds); err != nil {
		c.log.Error().Err(err).Msg("save interval")
		c.sendMessage(ctx, m.Chat.ID, c.msg("storage_error"), nil)
		return StartState{}
	}
	c.log.Info().Int64("user_id", s.Prior.UserID).Int64("interval", seconds).Msg("interval updated")
	c.sendMessage(ctx, m.Chat.ID, c.msg("interval_saved", units), nil)
	return StartState{}
}
