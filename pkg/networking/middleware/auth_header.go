package middleware

import (
	"net/http"
)

// BearerAuthMiddleware attaches a tenant's bearer token to requests that
// target the configured API host. Requests to any other host pass through
// untouched so a token can never leak to a third party.
type BearerAuthMiddleware struct {
	next    http.RoundTripper
	apiHost string
	token   string
}

func NewBearerAuthMiddleware(apiHost string, token string, roundTripper http.RoundTripper) *BearerAuthMiddleware {
	return &BearerAuthMiddleware{
		next:    roundTripper,
		apiHost: apiHost,
		token:   token,
	}
}

func (m *BearerAuthMiddleware) RoundTrip(request *http.Request) (*http.Response, error) {
	if request.URL == nil || m.token == "" || request.URL.Host != m.apiHost {
		return m.next.RoundTrip(request)
	}

	newRequest := request.Clone(request.Context())
	newRequest.Header.Set("Authorization", "Bearer "+m.token)
	return m.next.RoundTrip(newRequest)
}
