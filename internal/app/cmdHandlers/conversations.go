package cmdHandlers

import (
	"context"

	"github.com/ilinovom/fido5011-bot/pkg/telegram"
)

// DialogueState is the state of a private settings dialogue. The set of
// implementations is closed: StartState, AwaitingCommandState,
// AwaitingOriginState and AwaitingIntervalState.
type DialogueState interface {
	dialogueState()
}

// StartState waits for any message to show the menu. Restarted is set when
// the previous state was lost with a bot restart.
type StartState struct {
	Restarted bool
}

// AwaitingCommandState waits for a menu label.
type AwaitingCommandState struct {
	UserID  int64
	IsAdmin bool
}

// AwaitingOriginState waits for a new directory text.
type AwaitingOriginState struct {
	Prior AwaitingCommandState
}

// AwaitingIntervalState waits for a new announcement interval.
type AwaitingIntervalState struct {
	Prior AwaitingCommandState
}

func (StartState) dialogueState()            {}
func (AwaitingCommandState) dialogueState()  {}
func (AwaitingOriginState) dialogueState()   {}
func (AwaitingIntervalState) dialogueState() {}

// continueDialogue processes one private message and returns the next state.
func (c *CmdHandler) continueDialogue(ctx context.Context, m *telegram.Message, st DialogueState) DialogueState {
	switch s := st.(type) {
	case StartState:
		return c.handleStart(ctx, m, s)
	case AwaitingCommandState:
		return c.handleAwaitingCommand(ctx, m, s)
	case AwaitingOriginState:
		return c.handleAwaitingOrigin(ctx, m, s)
	case AwaitingIntervalState:
		return c.handleAwaitingInterval(ctx, m, s)
	}
	return StartState{}
}
