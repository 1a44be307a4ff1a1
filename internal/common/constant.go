package common

// Header names set on outbound backend requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// NameUnknown is the profile name the backend stores when it has not
// collected one yet.
const NameUnknown = "unknown"
