package clients

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultCredentialHeader is the custom header carrying the API
// credential unless a wrapper overrides it.
const DefaultCredentialHeader = "x-api-key"

// AuthStyle selects how the credential is attached to requests.
type AuthStyle int

const (
	// AuthStyleHeader sends the credential in a fixed custom header.
	AuthStyleHeader AuthStyle = iota
	// AuthStyleBearer sends the credential as an OAuth2 bearer token.
	AuthStyleBearer
)

// Config configures an authenticated client.
type Config struct {
	// Credential is the resolved API credential. Sensitive: it must
	// never appear in logs or error messages.
	Credential string
	// HeaderName overrides DefaultCredentialHeader for AuthStyleHeader.
	HeaderName string
	// AuthStyle selects header or bearer attachment.
	AuthStyle AuthStyle
	// Timeout bounds each request end to end.
	Timeout time.Duration
	// Retry controls the transient-failure middleware.
	Retry RetryConfig
}

// credentialTransport attaches the sensitive header to every request.
// It sets the value directly on the outgoing request and exposes it
// nowhere else.
type credentialTransport struct {
	header string
	value  string
	next   http.RoundTripper
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(t.header, t.value)
	return t.next.RoundTrip(clone)
}

// New builds an authenticated client: credential attachment wrapped in
// the retry middleware. Wrappers call this once at construction, only
// when a credential was resolved.
func New(cfg Config) *http.Client {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCredentialHeader
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	retrying := NewRetryTransport(nil, cfg.Retry)

	var transport http.RoundTripper
	switch cfg.AuthStyle {
	case AuthStyleBearer:
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Credential}),
			Base:   retrying,
		}
	default:
		transport = &credentialTransport{
			header: cfg.HeaderName,
			value:  cfg.Credential,
			next:   retrying,
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
