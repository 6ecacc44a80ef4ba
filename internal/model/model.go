// Package model defines domain entities used by services and repositories.
package model

// Account is the persisted unit keyed by username.
//
// Vault is an opaque, client-encrypted blob; the server stores and returns it
// but never interprets it. PasswordHash never leaves the server.
type Account struct {
	Username     string // primary key, immutable
	PasswordHash string // bcrypt modular-crypt string
	Vault        string // client ciphertext
}
