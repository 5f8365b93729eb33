package models

// Credentials identify a user and carry the master password for one call.
// Password never leaves the process and is never logged.
type Credentials struct {
	UserID   string
	Password string
}

// DocumentRef addresses one document. Version is zero when the caller wants
// whatever is stored.
type DocumentRef struct {
	UserID  string
	DocID   string
	Version int64
}
