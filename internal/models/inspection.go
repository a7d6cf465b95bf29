package models

import "time"

type Inspection struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	CustomerID          int64     `json:"customerId"`
	ModelCount          int       `json:"modelCount"`
	Desc                string    `json:"desc,omitempty"`
	InspectionType      string    `json:"inspectionType,omitempty"`
	ProductNumber       string    `json:"productNumber,omitempty"`
	ProductName         string    `json:"productName,omitempty"`
	Specification       string    `json:"specification,omitempty"`
	DisplayCustomerName string    `json:"displayCustomerName,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Model is a product variant under an inspection. Status is an opaque server string.
type Model struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	CustomerID        int64     `json:"customerId"`
	Seq               *int      `json:"seq"`
	Status            string    `json:"status"`
	Desc              *string   `json:"desc"`
	SubpartCount      int       `json:"subpartCount"`
	DetectionRegionTL Point     `json:"detectionRegionTL"`
	DetectionRegionBR Point     `json:"detectionRegionBR"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

const (
	InUseOff = 0
	InUseOn  = 1
)

// Subpart is a trackable component of a model. InUse is the only field this
// service ever asks the backend to change.
type Subpart struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CustomerID   int64     `json:"customerId"`
	ModelID      int64     `json:"modelId"`
	YoloID       string    `json:"yoloID"`
	Color        string    `json:"color"`
	Desc         string    `json:"desc"`
	IsPositive   int       `json:"isPositive"`
	NumObjects   int       `json:"numObjects"`
	Threshold    float64   `json:"threshold"`
	InUse        int       `json:"inUse"`
	UseHistogram int       `json:"useHistogram"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// InUseLabel renders an in-use flag the way the dashboard shows it.
func InUseLabel(v int) string {
	if v == InUseOn {
		return "사용중"
	}
	return "미사용중"
}
