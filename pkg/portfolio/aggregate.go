package portfolio

// Summary carries the portfolio-wide statistics derived from the success
// records of one registry snapshot.
type Summary struct {
	LoadedTenants       int     `json:"loadedTenants"`
	TotalActiveSeats    int     `json:"totalActiveSeats"`
	TotalRemainingSeats int     `json:"totalRemainingSeats"`
	TotalPendingInvites int     `json:"totalPendingInvites"`
	TotalAllocatedSeats int     `json:"totalAllocatedSeats"`
	SeatUtilization     float64 `json:"seatUtilization"`
	// UtilizationDefined is false when no seats are allocated at all, so
	// callers can render N/A instead of a misleading 0%.
	UtilizationDefined bool    `json:"utilizationDefined"`
	AverageHealthScore float64 `json:"averageHealthScore"`
}

// Loaded filters a snapshot down to the tenants that finished successfully.
func Loaded(records []TenantRecord) []TenantRecord {
	loaded := make([]TenantRecord, 0, len(records))
	for _, record := range records {
		if record.Status == StatusSuccess && record.Data != nil {
			loaded = append(loaded, record)
		}
	}
	return loaded
}

// Summarize derives the portfolio statistics from a registry snapshot.
// Tenants whose current score is 0 report "insufficient data"; they count
// toward the seat totals but are excluded from the score average entirely.
func Summarize(records []TenantRecord) Summary {
	loaded := Loaded(records)

	summary := Summary{LoadedTenants: len(loaded)}

	scoreSum := 0.0
	scoreEligible := 0
	for _, record := range loaded {
		seats := record.Data.Team.Seats
		summary.TotalActiveSeats += seats.Active
		summary.TotalRemainingSeats += seats.Remaining
		summary.TotalPendingInvites += seats.Pending

		if current := record.Data.CurrentScore(); current.Score > 0 {
			scoreSum += current.Score
			scoreEligible++
		}
	}

	summary.TotalAllocatedSeats = summary.TotalActiveSeats + summary.TotalRemainingSeats
	if summary.TotalAllocatedSeats > 0 {
		summary.UtilizationDefined = true
		summary.SeatUtilization = float64(summary.TotalActiveSeats) / float64(summary.TotalAllocatedSeats) * 100
	}

	if scoreEligible > 0 {
		summary.AverageHealthScore = scoreSum / float64(scoreEligible)
	}

	return summary
}
