package remote

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/pkg/dto"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListCustomers(ctx context.Context, token string, page, limit int) (*dto.CustomerListResponse, error) {
	args := m.Called(ctx, token, page, limit)
	resp, _ := args.Get(0).(*dto.CustomerListResponse)
	return resp, args.Error(1)
}

func (m *mockSource) ListContacts(ctx context.Context, token string, customerID *int64) ([]models.CustomerContact, error) {
	args := m.Called(ctx, token, customerID)
	resp, _ := args.Get(0).([]models.CustomerContact)
	return resp, args.Error(1)
}

func (m *mockSource) ListInspections(ctx context.Context, token string, query upstream.InspectionQuery) (*dto.ItemsResponse[models.Inspection], error) {
	args := m.Called(ctx, token, query)
	resp, _ := args.Get(0).(*dto.ItemsResponse[models.Inspection])
	return resp, args.Error(1)
}

func (m *mockSource) ListModels(ctx context.Context, token string, inspectionID int64, page, limit int) (*dto.ItemsResponse[models.Model], error) {
	args := m.Called(ctx, token, inspectionID, page, limit)
	resp, _ := args.Get(0).(*dto.ItemsResponse[models.Model])
	return resp, args.Error(1)
}

func (m *mockSource) ListSubparts(ctx context.Context, token string, modelID int64, page, limit int) (*dto.ItemsResponse[models.Subpart], error) {
	args := m.Called(ctx, token, modelID, page, limit)
	resp, _ := args.Get(0).(*dto.ItemsResponse[models.Subpart])
	return resp, args.Error(1)
}

func (m *mockSource) UpdateSubpartsStatus(ctx context.Context, token string, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error) {
	args := m.Called(ctx, token, req)
	resp, _ := args.Get(0).(*dto.UpdateSubpartsStatusResponse)
	return resp, args.Error(1)
}
