//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/internal/middleware"
)

type fakeBanditService struct {
	selectErr error
	rewardErr error

	gotStrategy bandit.Strategy
	gotOpts     bandit.SelectOptions
	gotReward   bandit.RewardInput
	runAllCalls int
}

func (f *fakeBanditService) SelectForProject(ctx context.Context, projectID uint64, strategy bandit.Strategy, opts bandit.SelectOptions) (bandit.SelectionResult, error) {
	f.gotStrategy, f.gotOpts = strategy, opts
	if f.selectErr != nil {
		return bandit.SelectionResult{}, f.selectErr
	}
	return bandit.SelectionResult{ProjectID: projectID, BanditID: 7, OptimalPrice: 15, Strategy: strategy.String()}, nil
}

func (f *fakeBanditService) Distributions(ctx context.Context, projectID uint64, strategy bandit.Strategy) ([]domain.BanditDistribution, error) {
	f.gotStrategy = strategy
	return []domain.BanditDistribution{{BanditID: 1, Strategy: strategy.String()}}, nil
}

func (f *fakeBanditService) ApplyReward(ctx context.Context, in bandit.RewardInput) (bandit.RewardResult, error) {
	f.gotReward = in
	if f.rewardErr != nil {
		return bandit.RewardResult{}, f.rewardErr
	}
	return bandit.RewardResult{Bandit: domain.Bandit{ID: in.BanditID, Trial: 1}}, nil
}

func (f *fakeBanditService) RunAll(ctx context.Context, strategy bandit.Strategy, opts bandit.SelectOptions) (map[uint64]bandit.SelectionResult, error) {
	f.runAllCalls++
	f.gotStrategy, f.gotOpts = strategy, opts
	return map[uint64]bandit.SelectionResult{1: {ProjectID: 1}}, nil
}

type fakeSweeper struct {
	calls int
	err   error
}

func (f *fakeSweeper) RunOnce(ctx context.Context) (map[uint64]bandit.SelectionResult, error) {
	f.calls++
	return nil, f.err
}

func do(t *testing.T, h echo.HandlerFunc, method, path, route string, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetPath(route)
	if len(params) > 0 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}

	if err := h(c); err != nil {
		middleware.ErrorHandler(err, c)
	}
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res struct {
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Message
}

func TestSelectDefaults(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	rec := do(t, h.Select, http.MethodPost, "/api/v1/projects/3/thompson/select", "/projects/:id/thompson/select", `{}`, "id", "3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"optimal_price":15`)
	assert.Equal(t, bandit.StrategyBernoulli, svc.gotStrategy)
	assert.True(t, svc.gotOpts.Persist)
	assert.False(t, svc.gotOpts.RecordExperiment)
}

func TestSelectOptions(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	body := `{"strategy":"gaussian","persist":false,"create_experiment":true}`
	rec := do(t, h.Select, http.MethodPost, "/", "/projects/:id/thompson/select", body, "id", "3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bandit.StrategyGaussian, svc.gotStrategy)
	assert.False(t, svc.gotOpts.Persist)
	assert.True(t, svc.gotOpts.RecordExperiment)
}

func TestSelectErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("project 3: %w", domain.ErrNotFound), http.StatusNotFound},
		{"invalid", fmt.Errorf("%w: nope", domain.ErrInvalidArgument), http.StatusBadRequest},
		{"conflict", fmt.Errorf("x: %w", domain.ErrConcurrencyConflict), http.StatusConflict},
		{"storage", fmt.Errorf("x: %w", domain.ErrStorage), http.StatusServiceUnavailable},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewThompsonHandler(&fakeBanditService{selectErr: tc.err}, nil)
			rec := do(t, h.Select, http.MethodPost, "/", "/projects/:id/thompson/select", `{}`, "id", "3")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestSelectInternalErrorIsHidden(t *testing.T) {
	h := NewThompsonHandler(&fakeBanditService{selectErr: fmt.Errorf("dial tcp 10.0.0.7:5432: secret")}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(bandit.WithTraceID(req.Context(), "req-42"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/projects/:id/thompson/select")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := h.Select(c)
	require.Error(t, err)
	middleware.ErrorHandler(err, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), `"request_id":"req-42"`)
}

func TestSelectRejectsUnknownStrategy(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	rec := do(t, h.Select, http.MethodPost, "/", "/projects/:id/thompson/select", `{"strategy":"ucb"}`, "id", "3")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unknown strategy")
	assert.Zero(t, svc.gotStrategy)
}

func TestSelectRejectsBadID(t *testing.T) {
	h := NewThompsonHandler(&fakeBanditService{}, nil)
	rec := do(t, h.Select, http.MethodPost, "/", "/projects/:id/thompson/select", `{}`, "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributionsStrategyQuery(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	rec := do(t, h.Distributions, http.MethodGet, "/api/v1/projects/3/thompson/distributions?strategy=gaussian", "/projects/:id/thompson/distributions", "", "id", "3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bandit.StrategyGaussian, svc.gotStrategy)
	assert.Contains(t, rec.Body.String(), `"strategy":"gaussian"`)
}

func TestReward(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	body := `{"reward":1,"decision":"purchase","context":{"channel":"email"}}`
	rec := do(t, h.Reward, http.MethodPost, "/", "/bandits/:id/thompson/reward", body, "id", "12")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(12), svc.gotReward.BanditID)
	assert.Equal(t, 1.0, svc.gotReward.Reward)
	assert.Equal(t, bandit.StrategyBernoulli, svc.gotReward.Strategy)
	assert.Equal(t, "purchase", svc.gotReward.Decision)
	assert.Equal(t, "email", svc.gotReward.Context["channel"])
}

func TestRewardZeroIsAccepted(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	rec := do(t, h.Reward, http.MethodPost, "/", "/bandits/:id/thompson/reward", `{"reward":0}`, "id", "12")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0.0, svc.gotReward.Reward)
}

func TestRewardValidation(t *testing.T) {
	svc := &fakeBanditService{}
	h := NewThompsonHandler(svc, nil)

	rec := do(t, h.Reward, http.MethodPost, "/", "/bandits/:id/thompson/reward", `{}`, "id", "12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.rewardErr = fmt.Errorf("%w: bernoulli reward must be within [0, 1]", domain.ErrInvalidArgument)
	rec = do(t, h.Reward, http.MethodPost, "/", "/bandits/:id/thompson/reward", `{"reward":3}`, "id", "12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.rewardErr = fmt.Errorf("commit: %w", domain.ErrConcurrencyConflict)
	rec = do(t, h.Reward, http.MethodPost, "/", "/bandits/:id/thompson/reward", `{"reward":1}`, "id", "12")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunAllUsesGuardedSweepByDefault(t *testing.T) {
	svc := &fakeBanditService{}
	sw := &fakeSweeper{}
	h := NewThompsonHandler(svc, sw)

	rec := do(t, h.RunAll, http.MethodPost, "/", "/algorithm/run_all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sw.calls)
	assert.Zero(t, svc.runAllCalls)

	sw.err = bandit.ErrSweepInProgress
	rec = do(t, h.RunAll, http.MethodPost, "/", "/algorithm/run_all", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunAllWithExplicitOptions(t *testing.T) {
	svc := &fakeBanditService{}
	sw := &fakeSweeper{}
	h := NewThompsonHandler(svc, sw)

	rec := do(t, h.RunAll, http.MethodPost, "/", "/algorithm/run_all", `{"strategy":"gaussian","create_experiment":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, sw.calls)
	assert.Equal(t, 1, svc.runAllCalls)
	assert.Equal(t, bandit.StrategyGaussian, svc.gotStrategy)
	assert.True(t, svc.gotOpts.Persist)
	assert.True(t, svc.gotOpts.RecordExperiment)
}
