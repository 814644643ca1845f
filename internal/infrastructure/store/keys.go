// Package store persists the marketplace state on a durable key-value
// backend: one key for the serialized domain blob, one for the session slot,
// and two short-lived keys for the in-flight OAuth values.
package store

import "time"

const (
	domainKey       = "eetrade:state:v2"
	sessionKey      = "eetrade:session:v2"
	oauthStateKey   = "eetrade:oauth:state"
	pkceVerifierKey = "eetrade:oauth:verifier"
)

// flowTTL bounds how long an abandoned login attempt lingers; a completed
// callback clears the keys explicitly well before this.
const flowTTL = 15 * time.Minute
