package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the auth scheme prefix and the WWW-Authenticate challenge.
	BearerScheme = "Bearer"

	// TokenType is reported to clients alongside a freshly issued token.
	TokenType = "bearer"

	// DefaultAvatar is assigned to leaderboard entries submitted without one.
	DefaultAvatar = "/assets/default-avatar.png"
)
