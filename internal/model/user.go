package model

// User is a local account.  The coordinator only ever looks users up by
// login to validate purchases; account management lives elsewhere.
type User struct {
	ID    int64  // local primary key
	Login string // unique login, also the session key
	Name  string // display name
	Email string // contact address
}
