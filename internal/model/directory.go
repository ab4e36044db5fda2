package model

// DirectoryRecord is one nodelist entry returned by the directory service.
type DirectoryRecord struct {
	Address       string  `json:"address"`
	DisplayName   string  `json:"display_name"`
	TelegramName  *string `json:"telegram_name,omitempty"`
	TelegramLogin *string `json:"telegram_login,omitempty"`
	OwnerUserID   int64   `json:"owner_user_id"`
}
