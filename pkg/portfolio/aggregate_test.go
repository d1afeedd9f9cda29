package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultview/vaultview/internal/api/contract"
)

func successRecord(name string, score float64, active, remaining, pending int) TenantRecord {
	return TenantRecord{
		ID:     name,
		Name:   name,
		Status: StatusSuccess,
		Data: &TenantData{
			Team: contract.TeamStatus{Seats: contract.Seats{Active: active, Remaining: remaining, Pending: pending}},
			HealthScore: []contract.ScoreSnapshot{
				{Score: score - 10, Name: "Jan"},
				{Score: score},
			},
		},
	}
}

func Test_Summarize_seatTotalsAndUtilization(t *testing.T) {
	records := []TenantRecord{
		successRecord("A", 80, 10, 5, 2),
		successRecord("B", 90, 20, 5, 1),
		{ID: "C", Name: "C", Status: StatusError, Error: "boom"},
		{ID: "D", Name: "D", Status: StatusLoading},
	}

	summary := Summarize(records)
	assert.Equal(t, 2, summary.LoadedTenants)
	assert.Equal(t, 30, summary.TotalActiveSeats)
	assert.Equal(t, 10, summary.TotalRemainingSeats)
	assert.Equal(t, 3, summary.TotalPendingInvites)
	assert.Equal(t, 40, summary.TotalAllocatedSeats)
	assert.True(t, summary.UtilizationDefined)
	assert.InDelta(t, 75.0, summary.SeatUtilization, 0.001)
	assert.InDelta(t, 85.0, summary.AverageHealthScore, 0.001)
}

func Test_Summarize_zeroScoreTenantsExcludedFromAverageOnly(t *testing.T) {
	records := []TenantRecord{
		successRecord("A", 80, 10, 0, 0),
		successRecord("B", 0, 5, 0, 0), // insufficient data sentinel
	}

	summary := Summarize(records)
	assert.InDelta(t, 80.0, summary.AverageHealthScore, 0.001)
	assert.Equal(t, 15, summary.TotalActiveSeats)
}

func Test_Summarize_noAllocatedSeats(t *testing.T) {
	records := []TenantRecord{successRecord("A", 80, 0, 0, 0)}

	summary := Summarize(records)
	assert.Equal(t, 0, summary.TotalAllocatedSeats)
	assert.False(t, summary.UtilizationDefined)
	assert.Equal(t, 0.0, summary.SeatUtilization)
	assert.False(t, summary.SeatUtilization != summary.SeatUtilization, "utilization must never be NaN")
}

func Test_Summarize_emptyPortfolio(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.LoadedTenants)
	assert.Equal(t, 0.0, summary.AverageHealthScore)
	assert.False(t, summary.UtilizationDefined)
}

func Test_ResolveRole_precedence(t *testing.T) {
	assert.Equal(t, RoleAdmin, ResolveRole(contract.Role{TeamAdmin: true, GroupManager: true, BillingAdmin: true}))
	assert.Equal(t, RoleGroupManager, ResolveRole(contract.Role{GroupManager: true, BillingAdmin: true}))
	assert.Equal(t, RoleBillingAdmin, ResolveRole(contract.Role{BillingAdmin: true}))
	assert.Equal(t, RoleUser, ResolveRole(contract.Role{}))

	assert.Equal(t, "Group Manager", RoleGroupManager.Label())
	assert.Equal(t, "groupManager", RoleGroupManager.FlagName())
	assert.Equal(t, "User", RoleUser.FlagName())
}

func Test_CurrentScore_lastElementWins(t *testing.T) {
	data := &TenantData{HealthScore: []contract.ScoreSnapshot{{Score: 10}, {Score: 20}, {Score: 42}}}
	assert.Equal(t, float64(42), data.CurrentScore().Score)

	var empty *TenantData
	assert.Equal(t, float64(0), empty.CurrentScore().Score)
}
