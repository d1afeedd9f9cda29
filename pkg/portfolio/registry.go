package portfolio

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vaultview/vaultview/pkg/credentials"
)

// Registry holds the per-tenant records of one session, in submission order.
// Updates are copy-on-write by id: each one produces a new slice equal to the
// old one except for the replaced record, so concurrently resolving pipelines
// can never lose each other's updates. An epoch token gates writes; updates
// carrying a stale epoch (issued before a Reset) are dropped.
type Registry struct {
	mu      sync.RWMutex
	epoch   uint64
	records []TenantRecord
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Seed replaces the registry content with one loading record per credential
// and returns the new epoch together with the seeded records.
func (r *Registry) Seed(set credentials.Set) (uint64, []TenantRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.epoch++
	r.records = make([]TenantRecord, 0, len(set))
	for _, c := range set {
		r.records = append(r.records, TenantRecord{
			ID:     uuid.NewString(),
			Name:   c.Name,
			Token:  c.Token,
			Status: StatusLoading,
		})
	}
	return r.epoch, r.snapshotLocked()
}

// Reset discards all records and bumps the epoch so in-flight pipelines of
// the discarded session can no longer write.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.records = nil
}

// Epoch returns the current session epoch.
func (r *Registry) Epoch() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.epoch
}

// Snapshot returns the current records in submission order.
func (r *Registry) Snapshot() []TenantRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []TenantRecord {
	snapshot := make([]TenantRecord, len(r.records))
	copy(snapshot, r.records)
	return snapshot
}

// Get returns the record with the given id.
func (r *Registry) Get(id string) (TenantRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.ID == id {
			return record, true
		}
	}
	return TenantRecord{}, false
}

// Complete transitions one loading record to success. It reports whether the
// update was applied; stale epochs and repeated transitions are no-ops.
func (r *Registry) Complete(epoch uint64, id string, data TenantData) bool {
	return r.update(epoch, id, func(record TenantRecord) TenantRecord {
		record.Status = StatusSuccess
		record.Data = &data
		return record
	})
}

// Fail transitions one loading record to error with a descriptive message.
func (r *Registry) Fail(epoch uint64, id string, message string) bool {
	return r.update(epoch, id, func(record TenantRecord) TenantRecord {
		record.Status = StatusError
		record.Error = message
		return record
	})
}

func (r *Registry) update(epoch uint64, id string, apply func(TenantRecord) TenantRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if epoch != r.epoch {
		return false
	}

	for i := range r.records {
		if r.records[i].ID != id {
			continue
		}
		if r.records[i].Status != StatusLoading {
			return false
		}

		next := make([]TenantRecord, len(r.records))
		copy(next, r.records)
		next[i] = apply(r.records[i])
		r.records = next
		return true
	}
	return false
}
