package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"smartPricing/business/project"
	"smartPricing/domain"
)

type ProjectService interface {
	CreateProject(ctx context.Context, in project.CreateProjectInput) (*domain.Project, error)
	GetProject(ctx context.Context, projectID uint64) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	OptimalPrice(ctx context.Context, projectID uint64) (domain.OptimalPriceResponse, error)
	AddBandit(ctx context.Context, projectID uint64, price decimal.Decimal) (*domain.Bandit, error)
	ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error)
	ChangePrice(ctx context.Context, banditID uint64, price decimal.Decimal) (*domain.Bandit, error)
}

type ProjectHandler struct {
	projectService ProjectService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProjectHandler(projectService ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type CreateProjectRequest struct {
	Description string    `json:"description" validate:"required"`
	ImagePath   string    `json:"image_path"`
	Prices      []float64 `json:"prices" validate:"dive,gt=0"`
}

type PriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

type ProjectResponse struct {
	domain.Project
	Bandits []domain.Bandit `json:"bandits,omitempty"`
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.validator.Struct(&req); err != nil {
		return invalid(err)
	}

	prices := make([]decimal.Decimal, len(req.Prices))
	for i, p := range req.Prices {
		prices[i] = decimal.NewFromFloat(p)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.projectService.CreateProject(ctx, project.CreateProjectInput{
		Description: req.Description,
		ImagePath:   req.ImagePath,
		Prices:      prices,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(ProjectResponse{Project: *p, Bandits: p.Bandits}))
}

func (h *ProjectHandler) GetAllProjects(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	projects, err := h.projectService.ListProjects(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(projects))
}

func (h *ProjectHandler) GetProjectByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.projectService.GetProject(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

// GET /api/v1/algorithm/optimal_price/:id
func (h *ProjectHandler) GetOptimalPrice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.projectService.OptimalPrice(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

func (h *ProjectHandler) AddBandit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req PriceRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.validator.Struct(&req); err != nil {
		return invalid(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	b, err := h.projectService.AddBandit(ctx, id, decimal.NewFromFloat(req.Price))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(b))
}

func (h *ProjectHandler) GetBandits(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	bandits, err := h.projectService.ListBandits(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(bandits))
}

// PUT /api/v1/bandits/:id/price
func (h *ProjectHandler) UpdatePrice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req PriceRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.validator.Struct(&req); err != nil {
		return invalid(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	b, err := h.projectService.ChangePrice(ctx, id, decimal.NewFromFloat(req.Price))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(b))
}
