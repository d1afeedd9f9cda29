package portfolio

import (
	"sort"
	"strings"

	"github.com/vaultview/vaultview/internal/api/contract"
)

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// SortConfig is a key/direction pair driving a stable sort.
type SortConfig struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// Toggle returns the configuration after selecting key: re-selecting the
// current key flips the direction, a new key always starts ascending.
func (c SortConfig) Toggle(key string) SortConfig {
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// Tenant sort keys.
const (
	SortByName           = "name"
	SortByActiveSeats    = "active_seats"
	SortByAvailableSeats = "available_seats"
	SortByPendingInvites = "pending_invites"
	SortByScore          = "score"
	SortByWeak           = "weak"
	SortByReused         = "reused"
	SortByCompromised    = "compromised"
)

// Member sort keys.
const (
	SortMembersByEmail       = "email"
	SortMembersByStatus      = "status"
	SortMembersByScore       = "score"
	SortMembersByWeak        = "weak"
	SortMembersByCompromised = "compromised"
	SortMembersByAuthType    = "authType"
	SortMembersByRole        = "role"
)

// SortTenants returns a stably sorted copy of records. Ties keep their prior
// relative order; records without data sort with zero-valued keys.
func SortTenants(records []TenantRecord, config SortConfig) []TenantRecord {
	sorted := make([]TenantRecord, len(records))
	copy(sorted, records)

	if config.Key == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		less, equal := compareTenants(sorted[i], sorted[j], config.Key)
		if equal {
			return false
		}
		if config.Direction == Descending {
			return !less
		}
		return less
	})
	return sorted
}

func compareTenants(a, b TenantRecord, key string) (less bool, equal bool) {
	if key == SortByName {
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		return an < bn, an == bn
	}

	av := tenantSortValue(a, key)
	bv := tenantSortValue(b, key)
	return av < bv, av == bv
}

func tenantSortValue(record TenantRecord, key string) float64 {
	if record.Data == nil {
		return 0
	}
	seats := record.Data.Team.Seats
	current := record.Data.CurrentScore()

	switch key {
	case SortByActiveSeats:
		return float64(seats.Active)
	case SortByAvailableSeats:
		return float64(seats.Remaining)
	case SortByPendingInvites:
		return float64(seats.Pending)
	case SortByScore:
		return current.Score
	case SortByWeak:
		return float64(current.Weak)
	case SortByReused:
		return float64(current.Reused)
	case SortByCompromised:
		return float64(current.Compromised)
	default:
		return 0
	}
}

// SortMembers returns a stably sorted copy of one tenant's roster. The role
// key compares display labels, not raw flags.
func SortMembers(members []contract.Member, config SortConfig) []contract.Member {
	sorted := make([]contract.Member, len(members))
	copy(sorted, members)

	if config.Key == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		less, equal := compareMembers(sorted[i], sorted[j], config.Key)
		if equal {
			return false
		}
		if config.Direction == Descending {
			return !less
		}
		return less
	})
	return sorted
}

func compareMembers(a, b contract.Member, key string) (less bool, equal bool) {
	switch key {
	case SortMembersByEmail:
		ae, be := strings.ToLower(a.Email), strings.ToLower(b.Email)
		return ae < be, ae == be
	case SortMembersByStatus:
		return a.Status < b.Status, a.Status == b.Status
	case SortMembersByAuthType:
		return a.Authentication.Type < b.Authentication.Type, a.Authentication.Type == b.Authentication.Type
	case SortMembersByRole:
		al, bl := ResolveRole(a.Role).Label(), ResolveRole(b.Role).Label()
		return al < bl, al == bl
	case SortMembersByScore:
		return a.PasswordHealth.Score < b.PasswordHealth.Score, a.PasswordHealth.Score == b.PasswordHealth.Score
	case SortMembersByWeak:
		return a.PasswordHealth.WeakPasswords < b.PasswordHealth.WeakPasswords, a.PasswordHealth.WeakPasswords == b.PasswordHealth.WeakPasswords
	case SortMembersByCompromised:
		return a.PasswordHealth.CompromisedPasswords < b.PasswordHealth.CompromisedPasswords, a.PasswordHealth.CompromisedPasswords == b.PasswordHealth.CompromisedPasswords
	default:
		return false, true
	}
}
