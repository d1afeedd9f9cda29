package portfolio

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultview/vaultview/internal/api/contract"
	"github.com/vaultview/vaultview/pkg/credentials"
)

func Test_Seed_createsLoadingRecordInSubmissionOrder(t *testing.T) {
	registry := NewRegistry()

	set := credentials.Set{
		{Name: "Acme", Token: "t1"},
		{Name: "Globex", Token: "t2"},
		{Name: "Acme", Token: "t1"}, // duplicates are independently tracked
	}
	_, records := registry.Seed(set)

	require.Len(t, records, 3)
	ids := map[string]bool{}
	for i, record := range records {
		assert.Equal(t, set[i].Name, record.Name)
		assert.Equal(t, StatusLoading, record.Status)
		assert.Nil(t, record.Data)
		assert.NotEmpty(t, record.ID)
		ids[record.ID] = true
	}
	assert.Len(t, ids, 3, "ids must be unique within a session")
}

func Test_Complete_transitionsOnlyOnce(t *testing.T) {
	registry := NewRegistry()
	epoch, records := registry.Seed(credentials.Set{{Name: "Acme", Token: "t1"}})
	id := records[0].ID

	data := TenantData{HealthScore: []contract.ScoreSnapshot{{Score: 80}}}
	assert.True(t, registry.Complete(epoch, id, data))

	// terminal states never change again
	assert.False(t, registry.Fail(epoch, id, "late failure"))
	assert.False(t, registry.Complete(epoch, id, TenantData{}))

	record, ok := registry.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, record.Status)
	assert.Empty(t, record.Error)
	require.NotNil(t, record.Data)
	assert.Equal(t, float64(80), record.Data.CurrentScore().Score)
}

func Test_Fail_recordsMessageWithoutData(t *testing.T) {
	registry := NewRegistry()
	epoch, records := registry.Seed(credentials.Set{{Name: "Acme", Token: "t1"}})

	assert.True(t, registry.Fail(epoch, records[0].ID, "Members request failed with status 502"))

	record, _ := registry.Get(records[0].ID)
	assert.Equal(t, StatusError, record.Status)
	assert.Equal(t, "Members request failed with status 502", record.Error)
	assert.Nil(t, record.Data)
}

func Test_Update_withStaleEpochIsNoOp(t *testing.T) {
	registry := NewRegistry()
	staleEpoch, staleRecords := registry.Seed(credentials.Set{{Name: "Acme", Token: "t1"}})

	registry.Reset()

	assert.False(t, registry.Complete(staleEpoch, staleRecords[0].ID, TenantData{}))
	assert.Empty(t, registry.Snapshot())

	// a fresh session is unaffected by the straggler
	epoch, records := registry.Seed(credentials.Set{{Name: "Globex", Token: "t2"}})
	assert.False(t, registry.Fail(staleEpoch, staleRecords[0].ID, "stale"))
	assert.True(t, registry.Complete(epoch, records[0].ID, TenantData{HealthScore: []contract.ScoreSnapshot{{Score: 1}}}))
}

func Test_Update_unknownIdIsNoOp(t *testing.T) {
	registry := NewRegistry()
	epoch, _ := registry.Seed(credentials.Set{{Name: "Acme", Token: "t1"}})

	assert.False(t, registry.Complete(epoch, "no-such-id", TenantData{}))
}

func Test_ConcurrentUpdates_loseNothing(t *testing.T) {
	registry := NewRegistry()

	set := credentials.Set{}
	for i := 0; i < 64; i++ {
		set = append(set, credentials.Credential{Name: fmt.Sprintf("tenant-%d", i), Token: "t"})
	}
	epoch, records := registry.Seed(set)

	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if i%2 == 0 {
				registry.Complete(epoch, id, TenantData{HealthScore: []contract.ScoreSnapshot{{Score: float64(i)}}})
			} else {
				registry.Fail(epoch, id, "boom")
			}
		}(i, record.ID)
	}
	wg.Wait()

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 64)
	for i, record := range snapshot {
		assert.Equal(t, fmt.Sprintf("tenant-%d", i), record.Name, "submission order is preserved")
		assert.NotEqual(t, StatusLoading, record.Status)
	}
}

func Test_Snapshot_isACopy(t *testing.T) {
	registry := NewRegistry()
	epoch, records := registry.Seed(credentials.Set{{Name: "Acme", Token: "t1"}})

	before := registry.Snapshot()
	registry.Fail(epoch, records[0].ID, "boom")

	assert.Equal(t, StatusLoading, before[0].Status, "earlier snapshots are immutable")
	after := registry.Snapshot()
	assert.Equal(t, StatusError, after[0].Status)
}
