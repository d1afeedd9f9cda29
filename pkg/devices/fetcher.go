package devices

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/internal/api"
	"github.com/vaultview/vaultview/internal/api/contract"
	"github.com/vaultview/vaultview/pkg/configuration"
	"github.com/vaultview/vaultview/pkg/networking"
)

// ClientFactory builds a Teams API client bound to one tenant's token.
type ClientFactory func(token string) api.TeamsApiClient

// Selection identifies the user whose devices are currently drilled into.
type Selection struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
}

// Fetcher runs the on-demand device lookup for one selected user. Only one
// selection is active at a time; selecting a new user supersedes any
// in-flight request, whose late result is discarded rather than displayed
// for the wrong user (last request wins). Results are cached per session
// with a TTL so re-selecting a user skips the network; the cache never
// outlives the process.
type Fetcher struct {
	mu            sync.Mutex
	generation    uint64
	active        *Selection
	displayed     []contract.Device
	notice        string
	config        configuration.Configuration
	logger        *zerolog.Logger
	clientFactory ClientFactory
	cache         *gocache.Cache
}

func NewFetcher(config configuration.Configuration, logger *zerolog.Logger) *Fetcher {
	ttl := time.Duration(config.GetInt(configuration.DEVICE_CACHE_TTL_SECS)) * time.Second
	f := &Fetcher{
		config: config,
		logger: logger,
		cache:  gocache.New(ttl, 2*ttl),
	}
	f.clientFactory = f.defaultClientFactory
	return f
}

// SetClientFactory replaces how per-tenant API clients are built.
func (f *Fetcher) SetClientFactory(factory ClientFactory) {
	f.clientFactory = factory
}

func (f *Fetcher) defaultClientFactory(token string) api.TeamsApiClient {
	network := networking.NewNetworkAccess(f.config, f.logger, token)
	return api.NewTeamsApi(f.config.GetString(configuration.API_URL), network.GetHttpClient())
}

// Fetch selects (tenantID, email) and resolves its device list. The result
// is published to the displayed view only when the selection is still the
// active one by the time the request resolves. On failure a transient
// notice is recorded and the device view stays empty.
func (f *Fetcher) Fetch(ctx context.Context, tenantID, token, email string) ([]contract.Device, error) {
	generation, cacheKey := f.begin(tenantID, email)

	if cached, found := f.cache.Get(cacheKey); found {
		devices, ok := cached.([]contract.Device)
		if ok {
			f.apply(generation, devices, nil)
			return devices, nil
		}
	}

	client := f.clientFactory(token)
	devices, err := client.GetMemberDevices(ctx, []string{email})
	if err != nil {
		f.logger.Warn().Err(err).Str("email", email).Msg("device lookup failed")
		f.apply(generation, nil, err)
		return nil, err
	}

	f.cache.SetDefault(cacheKey, devices)
	f.apply(generation, devices, nil)
	return devices, nil
}

func (f *Fetcher) begin(tenantID, email string) (uint64, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.active = &Selection{TenantID: tenantID, Email: email}
	f.displayed = nil
	f.notice = ""
	return f.generation, tenantID + "|" + email
}

func (f *Fetcher) apply(generation uint64, devices []contract.Device, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// a newer selection superseded this request, discard its result
	if generation != f.generation {
		return
	}
	if err != nil {
		f.notice = err.Error()
		f.displayed = nil
		return
	}
	f.displayed = devices
}

// ClearSelection drops the active selection and any displayed devices,
// e.g. when the operator switches tenants.
func (f *Fetcher) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.active = nil
	f.displayed = nil
	f.notice = ""
}

// ActiveSelection returns the current selection, if any.
func (f *Fetcher) ActiveSelection() (Selection, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return Selection{}, false
	}
	return *f.active, true
}

// Devices returns the currently displayed device list.
func (f *Fetcher) Devices() []contract.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.displayed
}

// Notice returns the transient failure notice of the last resolved fetch,
// empty when the last fetch succeeded or nothing was fetched.
func (f *Fetcher) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}
