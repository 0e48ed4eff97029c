// Package shared holds the pieces every HTTP handler and middleware uses:
// the response envelope, the error kind to status mapping, request decoding
// and the values stored in the request context.
package shared
