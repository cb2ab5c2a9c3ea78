package dto

import (
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
)

// CreateClientRequest defines the payload for registering a dental practice.
type CreateClientRequest struct {
	ClientName    string `json:"clientName" binding:"required,max=255"`
	AccountNumber string `json:"accountNumber" binding:"required,max=50"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"omitempty,max=50"`
	Address       string `json:"address"`
}

// UpdateClientRequest holds optional client changes; nil fields are left as they are.
type UpdateClientRequest struct {
	ClientName *string `json:"clientName" binding:"omitempty,min=1,max=255"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Address    *string `json:"address"`
}

// ListParams are the common list query parameters.
type ListParams struct {
	Q        string `form:"q"`
	Sort     string `form:"sort"`
	Desc     bool   `form:"desc"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	ListParams
	Active string `form:"active" binding:"omitempty,oneof=true false"`
}

// ToState builds the list view state for these parameters.
func (p ListParams) ToState(defaultSort string) listview.State {
	sortBy := p.Sort
	if sortBy == "" {
		sortBy = defaultSort
	}
	return listview.New(sortBy).
		WithSearch(p.Q).
		WithSort(sortBy, p.Desc).
		WithPageSize(p.PageSize).
		WithPage(p.Page)
}

// ListClientsResponse wraps a page of clients.
type ListClientsResponse struct {
	Clients  []domain.Client `json:"clients"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// CreateCaseRequest defines the payload for receiving a new lab case.
type CreateCaseRequest struct {
	CaseNumber  string `json:"caseNumber" binding:"required,max=50"`
	PatientName string `json:"patientName" binding:"required,max=255"`
	Product     string `json:"product" binding:"omitempty,max=255"`
	DueDate     string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

// OffsetParams are limit/offset query parameters for short sub-resource lists.
type OffsetParams struct {
	Limit  int `form:"limit,default=50" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}
