package config

// DefaultMessages returns the built-in reply texts keyed by message id.
// Values containing %s or %d are used as fmt format strings.
func DefaultMessages() map[string]string {
	return map[string]string{
		"restarted":           "The bot was restarted, the previous dialogue was lost.",
		"menu":                "Choose a command on the keyboard below.",
		"current_descr":       "Your current directory text:\n%s\n\nSend the new text or / to keep it.",
		"current_descr_empty": "You have no directory text yet.\n\nSend the new text or / to keep it.",
		"descr_saved":         "Your directory text is saved.",
		"unchanged":           "Nothing changed.",
		"current_interval":    "Current announcement interval: %d.\n\nSend a new whole number or / to keep it.",
		"interval_saved":      "Announcement interval is set to %d.",
		"interval_invalid":    "%q is not a whole non-negative number, the interval is unchanged.",
		"no_rights":           "Insufficient rights.",
		"storage_error":       "Something went wrong, please try again later.",
		"no_address":          "?",
	}
}
