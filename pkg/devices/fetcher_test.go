package devices

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultview/vaultview/internal/api"
	"github.com/vaultview/vaultview/internal/api/contract"
	"github.com/vaultview/vaultview/pkg/configuration"
)

type fakeDeviceClient struct {
	mu      sync.Mutex
	calls   int
	devices map[string][]contract.Device
	err     error
	block   chan struct{}
}

func (f *fakeDeviceClient) GetTeamStatus(context.Context) (contract.TeamStatus, error) {
	return contract.TeamStatus{}, fmt.Errorf("not used")
}

func (f *fakeDeviceClient) GetPasswordHealth(context.Context) (contract.PasswordHealth, error) {
	return contract.PasswordHealth{}, fmt.Errorf("not used")
}

func (f *fakeDeviceClient) ListMembers(context.Context, api.MembersRequest) (contract.Members, error) {
	return contract.Members{}, fmt.Errorf("not used")
}

func (f *fakeDeviceClient) GetMemberDevices(ctx context.Context, emails []string) ([]contract.Device, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.devices[emails[0]], nil
}

func (f *fakeDeviceClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestFetcher(client api.TeamsApiClient) *Fetcher {
	config := configuration.New()
	logger := zerolog.Nop()
	fetcher := NewFetcher(config, &logger)
	fetcher.SetClientFactory(func(string) api.TeamsApiClient { return client })
	return fetcher
}

func Test_Fetch_publishesDevicesForActiveSelection(t *testing.T) {
	client := &fakeDeviceClient{devices: map[string][]contract.Device{
		"u1@x.com": {{Name: "iPhone", Platform: "ios"}},
	}}
	fetcher := newTestFetcher(client)

	devices, err := fetcher.Fetch(context.Background(), "tenant-1", "t1", "u1@x.com")
	require.NoError(t, err)
	require.Len(t, devices, 1)

	assert.Equal(t, devices, fetcher.Devices())
	selection, ok := fetcher.ActiveSelection()
	require.True(t, ok)
	assert.Equal(t, Selection{TenantID: "tenant-1", Email: "u1@x.com"}, selection)
	assert.Empty(t, fetcher.Notice())
}

func Test_Fetch_lastRequestWins(t *testing.T) {
	slowClient := &fakeDeviceClient{
		block:   make(chan struct{}),
		devices: map[string][]contract.Device{"u1@x.com": {{Name: "old laptop", Platform: "windows"}}},
	}
	fastClient := &fakeDeviceClient{
		devices: map[string][]contract.Device{"u2@x.com": {{Name: "iPhone", Platform: "ios"}}},
	}

	config := configuration.New()
	logger := zerolog.Nop()
	fetcher := NewFetcher(config, &logger)
	clients := map[string]api.TeamsApiClient{"t-slow": slowClient, "t-fast": fastClient}
	fetcher.SetClientFactory(func(token string) api.TeamsApiClient { return clients[token] })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = fetcher.Fetch(context.Background(), "tenant-1", "t-slow", "u1@x.com")
	}()

	// the second selection supersedes the first while it is still in flight
	require.Eventually(t, func() bool {
		selection, ok := fetcher.ActiveSelection()
		return ok && selection.Email == "u1@x.com"
	}, time.Second, time.Millisecond)

	_, err := fetcher.Fetch(context.Background(), "tenant-1", "t-fast", "u2@x.com")
	require.NoError(t, err)

	close(slowClient.block)
	wg.Wait()

	// u1's late result must never replace u2's devices
	devices := fetcher.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "iPhone", devices[0].Name)
}

func Test_Fetch_errorLeavesViewEmptyAndSetsNotice(t *testing.T) {
	client := &fakeDeviceClient{err: fmt.Errorf("MembersDeviceInformation request failed with status 500")}
	fetcher := newTestFetcher(client)

	_, err := fetcher.Fetch(context.Background(), "tenant-1", "t1", "u1@x.com")
	require.Error(t, err)

	assert.Nil(t, fetcher.Devices())
	assert.NotEmpty(t, fetcher.Notice())
}

func Test_Fetch_cachesWithinSession(t *testing.T) {
	client := &fakeDeviceClient{devices: map[string][]contract.Device{
		"u1@x.com": {{Name: "iPhone", Platform: "ios"}},
	}}
	fetcher := newTestFetcher(client)

	_, err := fetcher.Fetch(context.Background(), "tenant-1", "t1", "u1@x.com")
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), "tenant-1", "t1", "u1@x.com")
	require.NoError(t, err)

	assert.Equal(t, 1, client.callCount(), "second selection of the same user is served from cache")
}

func Test_ClearSelection_dropsEverything(t *testing.T) {
	client := &fakeDeviceClient{devices: map[string][]contract.Device{
		"u1@x.com": {{Name: "iPhone", Platform: "ios"}},
	}}
	fetcher := newTestFetcher(client)

	_, err := fetcher.Fetch(context.Background(), "tenant-1", "t1", "u1@x.com")
	require.NoError(t, err)

	fetcher.ClearSelection()
	assert.Nil(t, fetcher.Devices())
	_, ok := fetcher.ActiveSelection()
	assert.False(t, ok)
}
