// Package common contains shared constants and sentinel errors used across
// the Wathiq trip client and server.
package common

const (
	// AuthorizationHeader carries the bearer token on sync requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token inside AuthorizationHeader.
	BearerPrefix = "Bearer "

	// DateLayout is the day format used for trip dates and report queries.
	DateLayout = "2006-01-02"
)
