package models

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult is what a successful login yields. Token is never empty.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
