package dto

import "github.com/your-org/partsboard/internal/models"

// Upstream list envelopes. The backend answers every paged list as {items, total}
// except customers.

type CustomerListResponse struct {
	Customers []models.Customer `json:"customers"`
	Total     int               `json:"total"`
}

type ContactListResponse struct {
	Contacts []models.CustomerContact `json:"contacts"`
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type InspectionListResponse struct {
	Inspections []models.Inspection `json:"inspections"`
	Total       int                 `json:"total"`
}

type ModelListResponse struct {
	Models []models.Model `json:"models"`
	Total  int            `json:"total"`
}

type SubpartListResponse struct {
	Items []models.Subpart `json:"items"`
	Total int              `json:"total"`
}

type UpdateSubpartsStatusRequest struct {
	CustomerID      int64                  `json:"customerId" binding:"required"`
	ModelID         int64                  `json:"modelId" binding:"required"`
	UserID          int64                  `json:"userId"`
	Person          string                 `json:"person"`
	IP              string                 `json:"ip"`
	Reason          string                 `json:"reason"`
	MailSendAddress []string               `json:"mailSendAddress"`
	Subparts        []models.SubpartStatus `json:"subparts" binding:"required,min=1"`
}

type UpdateSubpartsStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StatusChangeListResponse struct {
	Changes []models.StatusChange `json:"changes"`
	Total   int                   `json:"total"`
}
