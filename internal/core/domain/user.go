package domain

const (
	// AdminUserID and AdminUsername identify the seed admin account created on
	// first store initialisation. Its isAdmin/isBlocked flags are immutable.
	AdminUserID   = "u-admin"
	AdminUsername = "admin"
)

// User models an identity resolved through the OAuth provider (or the explicit
// test login). Users are never deleted; moderation only flips IsBlocked.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	IsBlocked bool   `json:"isBlocked"`
}

// IsSeedAdmin reports whether u is the fixed admin account.
func (u User) IsSeedAdmin() bool {
	return u.ID == AdminUserID
}
