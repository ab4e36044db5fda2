package model

// UserState stores announcement state for a Telegram user.
type UserState struct {
	UserID     int64   `json:"user_id"`
	Addr       *string `json:"addr,omitempty"`
	Descr      *string `json:"descr,omitempty"`
	LastSeen   int64   `json:"last_seen"`
	ShortCount int     `json:"short_count"`
}

// DescrText returns the stored description or an empty string.
func (u *UserState) DescrText() string {
	if u.Descr == nil {
		return ""
	}
	return *u.Descr
}
