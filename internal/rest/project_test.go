//go:build !integration

package rest

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/business/project"
	"smartPricing/domain"
)

type fakeProjectService struct {
	created project.CreateProjectInput
	price   decimal.Decimal
	err     error
}

func (f *fakeProjectService) CreateProject(ctx context.Context, in project.CreateProjectInput) (*domain.Project, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	p := &domain.Project{ID: 1, Description: in.Description, NumberBandits: len(in.Prices)}
	for i, price := range in.Prices {
		p.Bandits = append(p.Bandits, domain.Bandit{ID: uint64(i + 1), ProjectID: 1, Price: price, Precision: 1})
	}
	return p, nil
}

func (f *fakeProjectService) GetProject(ctx context.Context, id uint64) (*domain.Project, error) {
	if id != 1 {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return &domain.Project{ID: 1}, nil
}

func (f *fakeProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return []domain.Project{{ID: 1}}, nil
}

func (f *fakeProjectService) OptimalPrice(ctx context.Context, id uint64) (domain.OptimalPriceResponse, error) {
	price := 15.0
	return domain.OptimalPriceResponse{ProjectID: id, OptimalPrice: &price}, nil
}

func (f *fakeProjectService) AddBandit(ctx context.Context, id uint64, price decimal.Decimal) (*domain.Bandit, error) {
	f.price = price
	return &domain.Bandit{ID: 9, ProjectID: id, Price: price}, nil
}

func (f *fakeProjectService) ListBandits(ctx context.Context, id uint64) ([]domain.Bandit, error) {
	return nil, nil
}

func (f *fakeProjectService) ChangePrice(ctx context.Context, id uint64, price decimal.Decimal) (*domain.Bandit, error) {
	f.price = price
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Bandit{ID: id, Price: price}, nil
}

func TestCreateProject(t *testing.T) {
	svc := &fakeProjectService{}
	h := NewProjectHandler(svc)

	rec := do(t, h.CreateProject, http.MethodPost, "/", "/projects", `{"description":"ebook","prices":[10,15.5,20]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.created.Prices, 3)
	assert.True(t, svc.created.Prices[1].Equal(decimal.RequireFromString("15.5")))
	assert.Contains(t, rec.Body.String(), `"bandits"`)
}

func TestCreateProjectValidation(t *testing.T) {
	h := NewProjectHandler(&fakeProjectService{})

	rec := do(t, h.CreateProject, http.MethodPost, "/", "/projects", `{"prices":[10]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.CreateProject, http.MethodPost, "/", "/projects", `{"description":"x","prices":[10,-1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.CreateProject, http.MethodPost, "/", "/projects", `{"description":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProjectNotFound(t *testing.T) {
	h := NewProjectHandler(&fakeProjectService{})

	rec := do(t, h.GetProjectByID, http.MethodGet, "/", "/projects/:id", "", "id", "2")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h.GetProjectByID, http.MethodGet, "/", "/projects/:id", "", "id", "1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePriceFrozen(t *testing.T) {
	svc := &fakeProjectService{err: fmt.Errorf("%w: price is immutable", domain.ErrInvalidArgument)}
	h := NewProjectHandler(svc)

	rec := do(t, h.UpdatePrice, http.MethodPut, "/", "/bandits/:id/price", `{"price":12}`, "id", "4")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "immutable")
	assert.True(t, svc.price.Equal(decimal.NewFromInt(12)))
}

func TestOptimalPrice(t *testing.T) {
	h := NewProjectHandler(&fakeProjectService{})

	rec := do(t, h.GetOptimalPrice, http.MethodGet, "/", "/algorithm/optimal_price/:id", "", "id", "1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"optimal_price":15`)
}
