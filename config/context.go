package config

type contextKey string

const (
	ContextIdentityKey contextKey = "identity"
	ContextSessionKey  contextKey = "sessionToken"
)
