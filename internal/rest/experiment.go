package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"smartPricing/domain"
)

type ExperimentService interface {
	ListByProject(ctx context.Context, projectID uint64, limit int) ([]domain.Experiment, error)
}

type ExperimentHandler struct {
	experimentService ExperimentService
	timeout           time.Duration
}

func NewExperimentHandler(svc ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		experimentService: svc,
		timeout:           10 * time.Second,
	}
}

type ExperimentQuery struct {
	Limit int `query:"limit"`
}

func (h *ExperimentHandler) ListByProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var q ExperimentQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exps, err := h.experimentService.ListByProject(ctx, id, q.Limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exps))
}
