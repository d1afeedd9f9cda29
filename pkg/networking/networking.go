package networking

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/internal/constants"
	"github.com/vaultview/vaultview/pkg/configuration"
	"github.com/vaultview/vaultview/pkg/networking/middleware"
)

// NetworkAccess builds HTTP clients bound to one tenant's bearer token.
// The token is attached only to requests targeting the configured API host.
type NetworkAccess interface {
	GetRoundTripper() http.RoundTripper
	GetHttpClient() *http.Client
	AddHeaderField(key string, value string)
}

type networkImpl struct {
	config       configuration.Configuration
	token        string
	staticHeader http.Header
	logger       *zerolog.Logger
}

// NewNetworkAccess creates a NetworkAccess for a single tenant token.
func NewNetworkAccess(config configuration.Configuration, logger *zerolog.Logger, token string) NetworkAccess {
	n := &networkImpl{
		config:       config,
		token:        token,
		staticHeader: http.Header{},
		logger:       logger,
	}
	n.staticHeader.Set("User-Agent", constants.VAULTVIEW_USER_AGENT)
	return n
}

func (n *networkImpl) AddHeaderField(key string, value string) {
	n.staticHeader.Add(key, value)
}

type decoratingRoundTripper struct {
	next    http.RoundTripper
	network *networkImpl
}

func (drt *decoratingRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	newRequest := request.Clone(request.Context())
	for k, v := range drt.network.staticHeader {
		if _, found := newRequest.Header[k]; !found {
			for i := range v {
				newRequest.Header.Add(k, v[i])
			}
		}
	}
	return drt.next.RoundTrip(newRequest)
}

func (n *networkImpl) GetRoundTripper() http.RoundTripper {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: n.config.GetBool(configuration.INSECURE_HTTPS), //nolint:gosec // explicitly operator controlled
		},
	}

	apiHost := ""
	if u := n.config.GetUrl(configuration.API_URL); u != nil {
		apiHost = u.Host
	}

	var roundTripper http.RoundTripper = transport
	roundTripper = middleware.NewRetryMiddleware(n.config, n.logger, roundTripper)
	roundTripper = middleware.NewBearerAuthMiddleware(apiHost, n.token, roundTripper)
	return &decoratingRoundTripper{next: roundTripper, network: n}
}

func (n *networkImpl) GetHttpClient() *http.Client {
	return &http.Client{
		Transport: n.GetRoundTripper(),
		Timeout:   time.Duration(n.config.GetInt(configuration.TIMEOUT)) * time.Second,
	}
}
