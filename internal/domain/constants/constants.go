// Package constants defines domain-wide constant values.
package constants

// Pub/Sub provider types
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Account event types published to the event stream.
const (
	EventAccountRegistered      = "account.registered"
	EventAccountLoggedIn        = "account.logged_in"
	EventAccountPasswordChanged = "account.password_changed"
)
