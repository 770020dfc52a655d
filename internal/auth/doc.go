// Package auth implements optional local accounts.
//
// Accounts only gate the favorites view when require_login is set. The API
// bearer token comes from configuration and is never derived from a login.
// Passwords are stored as bcrypt hashes in the "cijene-auth" storage key
// alongside the id of the logged-in account.
package auth
