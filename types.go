package oauth

// Message types exchanged between the popup-side callback handler and the
// opener-side waiter.
const (
	MessageTypeSuccess = "OAUTH_SUCCESS"
	MessageTypeError   = "OAUTH_ERROR"
)

// Fixed storage keys. The state key is durable and overwritten on every new
// authorization request; the result key is session-scoped and only written on
// the no-opener success path.
const (
	StateKey  = "oauth_state"
	ResultKey = "oauth_result"
)

// Defaults applied when the provider omits fields from the callback fragment.
const (
	DefaultTokenType = "bearer"
	DefaultExpiresIn = 3600
)

// OAuthResult is the normalized outcome of a successful implicit-grant
// handshake. It is constructed once by the callback parser and never mutated.
type OAuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	State       string `json:"state"`
}

// Message is the cross-context envelope relayed over a Bus. Origin is the
// sender's origin; receivers ignore messages whose origin does not match
// their own.
type Message struct {
	Type   string
	Origin string
	Token  *OAuthResult
	Error  string
}
