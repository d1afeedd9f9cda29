package portfolio

import (
	"github.com/vaultview/vaultview/internal/api/contract"
)

// Status is the lifecycle state of one tenant's fetch. Transitions are
// monotone: Loading moves to exactly one of Success or Error and never back.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// TenantRecord is the unit of state tracked per tenant in one session.
type TenantRecord struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Token  string      `json:"-"`
	Status Status      `json:"status"`
	Data   *TenantData `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// TenantData is the merged result of the three per-tenant API calls.
// HealthScore is never empty; its last element is the current snapshot.
type TenantData struct {
	Team        contract.TeamStatus      `json:"team"`
	HealthScore []contract.ScoreSnapshot `json:"healthscore"`
	Users       contract.Members         `json:"users"`
}

// CurrentScore returns the current snapshot, the last element of the series.
func (d *TenantData) CurrentScore() contract.ScoreSnapshot {
	if d == nil || len(d.HealthScore) == 0 {
		return contract.ScoreSnapshot{}
	}
	return d.HealthScore[len(d.HealthScore)-1]
}

// Role is the closed set of member roles, ordered by display precedence.
type Role int

const (
	RoleAdmin Role = iota
	RoleGroupManager
	RoleBillingAdmin
	RoleUser
)

// ResolveRole maps the vendor's boolean role flags to the first matching
// role: Admin > Group Manager > Billing Admin > User.
func ResolveRole(r contract.Role) Role {
	switch {
	case r.TeamAdmin:
		return RoleAdmin
	case r.GroupManager:
		return RoleGroupManager
	case r.BillingAdmin:
		return RoleBillingAdmin
	default:
		return RoleUser
	}
}

// Label is the human-readable role name used in views and comparisons.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleGroupManager:
		return "Group Manager"
	case RoleBillingAdmin:
		return "Billing Admin"
	default:
		return "User"
	}
}

// FlagName is the vendor's wire name of the role flag, used by the CSV
// export which records the raw flag rather than the display label.
func (r Role) FlagName() string {
	switch r {
	case RoleAdmin:
		return "teamAdmin"
	case RoleGroupManager:
		return "groupManager"
	case RoleBillingAdmin:
		return "billingAdmin"
	default:
		return "User"
	}
}
