package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"smartPricing/business/bandit"
	"smartPricing/domain"
)

type (
	ThompsonHandler struct {
		validate      *validator.Validate
		banditService BanditService
		sweeper       SweepRunner
		timeout       time.Duration
	}

	BanditService interface {
		SelectForProject(ctx context.Context, projectID uint64, strategy bandit.Strategy, opts bandit.SelectOptions) (bandit.SelectionResult, error)
		Distributions(ctx context.Context, projectID uint64, strategy bandit.Strategy) ([]domain.BanditDistribution, error)
		ApplyReward(ctx context.Context, in bandit.RewardInput) (bandit.RewardResult, error)
		RunAll(ctx context.Context, strategy bandit.Strategy, opts bandit.SelectOptions) (map[uint64]bandit.SelectionResult, error)
	}

	// SweepRunner is the manual trigger for a guarded sweep; nil falls back
	// to an unguarded RunAll.
	SweepRunner interface {
		RunOnce(ctx context.Context) (map[uint64]bandit.SelectionResult, error)
	}

	SelectRequest struct {
		Strategy         string `json:"strategy"`
		Persist          *bool  `json:"persist"`
		CreateExperiment bool   `json:"create_experiment"`
	}

	DistributionQuery struct {
		Strategy string `query:"strategy"`
	}

	RewardRequest struct {
		Reward   *float64       `json:"reward" validate:"required"`
		Strategy string         `json:"strategy"`
		Decision string         `json:"decision" validate:"max=255"`
		Context  map[string]any `json:"context"`
	}
)

func NewThompsonHandler(svc BanditService, sweeper SweepRunner) *ThompsonHandler {
	return &ThompsonHandler{
		validate:      validator.New(),
		banditService: svc,
		sweeper:       sweeper,
		timeout:       30 * time.Second,
	}
}

func (r SelectRequest) options() bandit.SelectOptions {
	persist := true
	if r.Persist != nil {
		persist = *r.Persist
	}
	return bandit.SelectOptions{Persist: persist, RecordExperiment: r.CreateExperiment}
}

// POST /api/v1/projects/:id/thompson/select
func (h *ThompsonHandler) Select(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	strategy, err := bandit.ParseStrategyOr(req.Strategy, bandit.StrategyBernoulli)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.banditService.SelectForProject(ctx, id, strategy, req.options())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// GET /api/v1/projects/:id/thompson/distributions?strategy=gaussian
func (h *ThompsonHandler) Distributions(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var q DistributionQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	strategy, err := bandit.ParseStrategyOr(q.Strategy, bandit.StrategyBernoulli)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	dists, err := h.banditService.Distributions(ctx, id, strategy)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(dists))
}

// POST /api/v1/bandits/:id/thompson/reward
func (h *ThompsonHandler) Reward(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req RewardRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := h.validate.Struct(&req); err != nil {
		return invalid(err)
	}

	strategy, err := bandit.ParseStrategyOr(req.Strategy, bandit.StrategyBernoulli)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.banditService.ApplyReward(ctx, bandit.RewardInput{
		BanditID: id,
		Strategy: strategy,
		Reward:   *req.Reward,
		Decision: req.Decision,
		Context:  req.Context,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(res))
}

// POST /api/v1/algorithm/run_all
//
// An empty body runs the guarded sweep with its configured options; a body
// with a strategy runs RunAll directly with the requested options.
func (h *ThompsonHandler) RunAll(c echo.Context) error {
	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var (
		results map[uint64]bandit.SelectionResult
		err     error
	)
	if req.Strategy == "" && req.Persist == nil && !req.CreateExperiment && h.sweeper != nil {
		results, err = h.sweeper.RunOnce(ctx)
	} else {
		strategy, perr := bandit.ParseStrategyOr(req.Strategy, bandit.StrategyBernoulli)
		if perr != nil {
			return perr
		}
		results, err = h.banditService.RunAll(ctx, strategy, req.options())
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}
