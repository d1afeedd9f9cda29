package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vaultview/vaultview/internal/api"
	"github.com/vaultview/vaultview/internal/api/contract"
	"github.com/vaultview/vaultview/pkg/configuration"
	"github.com/vaultview/vaultview/pkg/credentials"
	"github.com/vaultview/vaultview/pkg/networking"
)

// ClientFactory builds a Teams API client bound to one tenant's token.
type ClientFactory func(token string) api.TeamsApiClient

// FetchObserver receives per-tenant fetch outcomes, e.g. for metrics.
type FetchObserver interface {
	TenantFetchCompleted(status Status, duration time.Duration)
}

// Orchestrator seeds the registry from a credential set and drives one
// independent fetch pipeline per tenant. Within a pipeline the three API
// calls run concurrently and are merged only when all of them succeed;
// tenants never block each other and exactly one terminal update is
// published per tenant.
type Orchestrator struct {
	registry      *Registry
	config        configuration.Configuration
	logger        *zerolog.Logger
	clientFactory ClientFactory
	observer      FetchObserver
}

func NewOrchestrator(registry *Registry, config configuration.Configuration, logger *zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		config:   config,
		logger:   logger,
	}
	o.clientFactory = o.defaultClientFactory
	return o
}

// SetClientFactory replaces how per-tenant API clients are built. Used by
// tests and by callers that already own a client pool.
func (o *Orchestrator) SetClientFactory(factory ClientFactory) {
	o.clientFactory = factory
}

// SetObserver registers a fetch observer. Passing nil disables observation.
func (o *Orchestrator) SetObserver(observer FetchObserver) {
	o.observer = observer
}

func (o *Orchestrator) defaultClientFactory(token string) api.TeamsApiClient {
	network := networking.NewNetworkAccess(o.config, o.logger, token)
	return api.NewTeamsApi(o.config.GetString(configuration.API_URL), network.GetHttpClient())
}

// Initialize seeds the registry with one loading record per credential and
// starts the per-tenant pipelines. It returns immediately; completion is
// observable through the registry. Credentials are assumed to be validated
// by the caller.
func (o *Orchestrator) Initialize(ctx context.Context, set credentials.Set) {
	epoch, records := o.registry.Seed(set)

	var limiter *semaphore.Weighted
	if max := o.config.GetInt(configuration.MAX_TENANT_FETCHES); max > 0 {
		limiter = semaphore.NewWeighted(int64(max))
	}

	for _, record := range records {
		go o.fetchTenant(ctx, epoch, record, limiter)
	}
}

// FetchAll is the synchronous variant of Initialize used by one-shot
// commands. It seeds the registry, runs all pipelines to completion and
// returns the final snapshot.
func (o *Orchestrator) FetchAll(ctx context.Context, set credentials.Set) []TenantRecord {
	epoch, records := o.registry.Seed(set)

	var limiter *semaphore.Weighted
	if max := o.config.GetInt(configuration.MAX_TENANT_FETCHES); max > 0 {
		limiter = semaphore.NewWeighted(int64(max))
	}

	var wg sync.WaitGroup
	for _, record := range records {
		wg.Add(1)
		go func(record TenantRecord) {
			defer wg.Done()
			o.fetchTenant(ctx, epoch, record, limiter)
		}(record)
	}
	wg.Wait()

	return o.registry.Snapshot()
}

func (o *Orchestrator) fetchTenant(ctx context.Context, epoch uint64, record TenantRecord, limiter *semaphore.Weighted) {
	if limiter != nil {
		if err := limiter.Acquire(ctx, 1); err != nil {
			o.registry.Fail(epoch, record.ID, err.Error())
			return
		}
		defer limiter.Release(1)
	}

	started := time.Now()
	data, err := o.fetchTenantData(ctx, record.Token)

	if err != nil {
		o.logger.Error().Err(err).Str("tenant", record.Name).Msg("tenant fetch failed")
		applied := o.registry.Fail(epoch, record.ID, err.Error())
		o.observe(applied, StatusError, started)
		return
	}

	applied := o.registry.Complete(epoch, record.ID, *data)
	if !applied {
		o.logger.Debug().Str("tenant", record.Name).Msg("dropping update for discarded session")
	}
	o.observe(applied, StatusSuccess, started)
}

// fetchTenantData runs the three calls of one tenant concurrently and merges
// them. Any failing call fails the whole tenant; no partial data escapes.
func (o *Orchestrator) fetchTenantData(ctx context.Context, token string) (*TenantData, error) {
	client := o.clientFactory(token)

	var team contract.TeamStatus
	var health contract.PasswordHealth
	var users contract.Members

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		team, err = client.GetTeamStatus(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		health, err = client.GetPasswordHealth(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		limit := o.config.GetInt(configuration.MEMBERS_PAGE_SIZE)
		users, err = client.ListMembers(groupCtx, api.DefaultMembersRequest(limit))
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// history first, the current snapshot appended last
	series := make([]contract.ScoreSnapshot, 0, len(health.History)+1)
	series = append(series, health.History...)
	series = append(series, health.Current)

	return &TenantData{
		Team:        team,
		HealthScore: series,
		Users:       users,
	}, nil
}

func (o *Orchestrator) observe(applied bool, status Status, started time.Time) {
	if o.observer == nil || !applied {
		return
	}
	o.observer.TenantFetchCompleted(status, time.Since(started))
}
