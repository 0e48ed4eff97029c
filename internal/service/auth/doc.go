// Package auth verifies client credentials and issues and validates the
// HS256 access tokens that protect the API.
package auth
