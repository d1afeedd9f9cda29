package contract

type TeamStatusResponse struct {
	Data TeamStatus `json:"data"`
}

type TeamStatus struct {
	Seats Seats `json:"seats"`
}

type Seats struct {
	// Active is the number of occupied seats.
	Active int `json:"active"`
	// Remaining is the number of unassigned seats still available.
	Remaining int `json:"remaining"`
	// Pending presumably counts invitations sent but not yet accepted;
	// the vendor documentation does not confirm this reading.
	Pending int `json:"pending"`
}
