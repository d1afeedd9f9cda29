package contract

type MembersResponse struct {
	Data Members `json:"data"`
}

type Members struct {
	Members []Member `json:"members"`
}

type Member struct {
	Email          string         `json:"email"`
	Status         string         `json:"status"` // "accepted" or one of the invite states
	PasswordHealth MemberHealth   `json:"passwordHealth"`
	Authentication Authentication `json:"authentication"`
	Role           Role           `json:"role"`
	LastActivity   *int64         `json:"lastActivity"`
}

type MemberHealth struct {
	Score                float64 `json:"score"`
	WeakPasswords        int     `json:"weakPasswords"`
	CompromisedPasswords int     `json:"compromisedPasswords"`
	ReusedPasswords      int     `json:"reusedPasswords"`
}

type Authentication struct {
	Type string `json:"type"`
}

type Role struct {
	TeamAdmin    bool `json:"teamAdmin"`
	GroupManager bool `json:"groupManager"`
	BillingAdmin bool `json:"billingAdmin"`
}
