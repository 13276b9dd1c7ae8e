package model

// ImportRowError describes one skipped row of a role import.
type ImportRowError struct {
	Row     int    `json:"row"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ImportResult is the outcome of a role import.
type ImportResult struct {
	SuccessCount int              `json:"success_count"`
	Errors       []ImportRowError `json:"errors"`
}
