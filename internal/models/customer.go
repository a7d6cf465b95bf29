package models

import "time"

type Customer struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ContactName      string    `json:"contactName"`
	ContactInfo      string    `json:"contactInfo"`
	ParentCustomerID *int64    `json:"parentCustomerId"`
	Path             string    `json:"path"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type CustomerContact struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customerId"`
	Person      string    `json:"person"`
	PersonEmail string    `json:"personEmail"`
	IsMain      int       `json:"isMain"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User is the operator returned by the backend on login.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Tel        string `json:"tel"`
	IsAdmin    int    `json:"isAdmin"`
	CustomerID int64  `json:"customerId"`
}
