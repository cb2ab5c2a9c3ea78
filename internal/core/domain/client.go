package domain

// Client represents a dental practice billed by the lab.
type Client struct {
	ClientID      string `json:"clientID"`
	ClientName    string `json:"clientName"`
	AccountNumber string `json:"accountNumber"` // Unique, human-facing identifier
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	IsActive      bool   `json:"isActive"`
	AuditFields
}
