package model

// GlobalSettings holds values shared by all users.
type GlobalSettings struct {
	AnnouncementInterval int64 // seconds
	AdminIDs             map[int64]bool
}

// IsAdmin reports whether userID is one of the configured administrators.
func (s GlobalSettings) IsAdmin(userID int64) bool {
	return s.AdminIDs[userID]
}
