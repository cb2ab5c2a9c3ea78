package domain

import "time"

// CaseStatus tracks a lab case through production.
type CaseStatus string

const (
	CaseReceived   CaseStatus = "RECEIVED"
	CaseInProgress CaseStatus = "IN_PROGRESS"
	CaseCompleted  CaseStatus = "COMPLETED"
	CaseShipped    CaseStatus = "SHIPPED"
)

// Case is a single work order (crown, bridge, denture...) received from a client.
type Case struct {
	CaseID      string     `json:"caseID"`
	CaseNumber  string     `json:"caseNumber"`
	ClientID    string     `json:"clientID"`
	PatientName string     `json:"patientName"`
	Product     string     `json:"product"`
	Status      CaseStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AuditFields
}
