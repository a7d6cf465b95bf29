package dto

import "github.com/your-org/partsboard/internal/models"

type ViewQuery struct {
	CustomerID string `json:"customerId,omitempty"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Search     string `json:"search,omitempty"`
	RawQuery   string `json:"raw_query"`
}

type Pager struct {
	models.Pagination
	PrevEnabled bool `json:"prevEnabled"`
	NextEnabled bool `json:"nextEnabled"`
}

type InspectionRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CustomerName string `json:"customerName"`
	ModelCount   int    `json:"modelCount"`
	Selected     bool   `json:"selected"`
}

type ModelRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	SubpartCount int    `json:"subpartCount"`
	CreatedAt    string `json:"createdAt"`
	Selected     bool   `json:"selected"`
}

type SubpartRow struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	InUse      int    `json:"inUse"`
	Shown      int    `json:"shownInUse"`
	Changed    bool   `json:"changed"`
	ShowSwitch bool   `json:"showSwitch"`
}

type InspectionSection struct {
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
	SearchTerm string          `json:"searchTerm"`
	Rows       []InspectionRow `json:"rows"`
	Pager      Pager           `json:"pager"`
}

type ModelSection struct {
	Visible  bool       `json:"visible"`
	FullView bool       `json:"fullView"`
	Loading  bool       `json:"loading"`
	Error    string     `json:"error,omitempty"`
	Rows     []ModelRow `json:"rows"`
	Pager    Pager      `json:"pager"`
}

type SubpartSection struct {
	Visible  bool         `json:"visible"`
	FullView bool         `json:"fullView"`
	Loading  bool         `json:"loading"`
	Error    string       `json:"error,omitempty"`
	Total    int          `json:"total"`
	Rows     []SubpartRow `json:"rows"`
}

type Change struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	Description string `json:"description"`
}

type Recipient struct {
	Email  string `json:"email"`
	Person string `json:"person,omitempty"`
}

type EditSection struct {
	Scope       string      `json:"scope,omitempty"`
	Phase       string      `json:"phase"`
	Changes     []Change    `json:"changes"`
	CanSave     bool        `json:"canSave"`
	Updating    bool        `json:"updating"`
	Recipients  []Recipient `json:"recipients"`
	Reason      string      `json:"reason"`
	ContactPool []Recipient `json:"contactPool"`
}

type Dialogs struct {
	ModelDetail         *models.Model   `json:"modelDetail,omitempty"`
	SubpartDetail       *models.Subpart `json:"subpartDetail,omitempty"`
	SubpartDetailInUse  int             `json:"subpartDetailShownInUse"`
	ConfirmOpen         bool            `json:"confirmOpen"`
	SubpartConfirmOpen  bool            `json:"subpartConfirmOpen"`
	SubpartDetailEditOn bool            `json:"subpartDetailEditMode"`
}

type WorkspaceView struct {
	Query       ViewQuery         `json:"query"`
	Customers   []models.Customer `json:"customers"`
	CustomerErr string            `json:"customersError,omitempty"`
	Breadcrumb  []string          `json:"breadcrumb"`
	Inspections InspectionSection `json:"inspections"`
	Models      *ModelSection     `json:"models,omitempty"`
	Subparts    *SubpartSection   `json:"subparts,omitempty"`
	Dialogs     Dialogs           `json:"dialogs"`
	Edit        EditSection       `json:"edit"`
	Refreshing  bool              `json:"refreshing"`
}

// Workspace commands.

type ToggleRequest struct {
	Value *bool `json:"value"`
}

type QueryRequest struct {
	CustomerID *string `json:"customerId"`
	Limit      *int    `json:"limit"`
	Page       *int    `json:"page"`
	ModelPage  *int    `json:"modelPage"`
}

type SearchInputRequest struct {
	Value string `json:"value"`
}

type BeginEditRequest struct {
	Scope string `json:"scope" binding:"required,oneof=list detail"`
}

type StageRequest struct {
	SubpartID int64 `json:"subpartId" binding:"required"`
	InUse     *int  `json:"inUse" binding:"required,oneof=0 1"`
}

type ContactRequest struct {
	Email  string `json:"email" binding:"required"`
	Remove bool   `json:"remove"`
}

type ReasonRequest struct {
	Scope  string `json:"scope" binding:"required,oneof=list detail"`
	Reason string `json:"reason"`
}

type ScopeRequest struct {
	Scope string `json:"scope" binding:"required,oneof=list detail"`
}

type SubmitResponse struct {
	Submitted int            `json:"submitted"`
	Changes   []Change       `json:"changes"`
	Message   string         `json:"message"`
	View      *WorkspaceView `json:"view,omitempty"`
}

type RefreshResponse struct {
	Invalidated int           `json:"invalidated"`
	View        WorkspaceView `json:"view"`
}
