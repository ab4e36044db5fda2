package cmdHandlers

import "fmt"

const (
	LabelChangeDirectory = "change directory"
	LabelSetInterval     = "set interval"

	// CancelInput keeps the current value in edit prompts.
	CancelInput = "/"
)

// menuKeyboard builds the main menu. Only admins see the interval button.
func menuKeyboard(isAdmin bool) [][]string {
	kb := [][]string{{LabelChangeDirectory}}
	if isAdmin {
		kb = append(kb, []string{LabelSetInterval})
	}
	return kb
}

// cancelKeyboard offers the cancel input as a button.
func cancelKeyboard() [][]string {
	return [][]string{{CancelInput}}
}

// msg formats the message with the given id.
func (c *CmdHandler) msg(id string, args ...any) string {
	text, ok := c.messages[id]
	if !ok {
		text = id
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
