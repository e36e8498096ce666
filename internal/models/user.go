package models

// User is a local web UI account. The first sign-up claims the device.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
