package contract

type PasswordHealthResponse struct {
	Data PasswordHealth `json:"data"`
}

type PasswordHealth struct {
	History []ScoreSnapshot `json:"history"`
	Current ScoreSnapshot   `json:"current"`
}

// ScoreSnapshot is one point of the organization-wide health score series.
type ScoreSnapshot struct {
	Score          float64 `json:"score"`
	Weak           int     `json:"weak"`
	Reused         int     `json:"reused"`
	Compromised    int     `json:"compromised"`
	Safe           int     `json:"safe"`
	PasswordsTotal int     `json:"passwordsTotal"`
	Name           string  `json:"name,omitempty"`
}
