package project

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// ProjectRepository contract interface
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, projectID uint64) (domain.Project, error)
	FindAll(ctx context.Context) ([]domain.Project, error)
}

type BanditRepository interface {
	Create(ctx context.Context, b *domain.Bandit) error
	GetBandit(ctx context.Context, banditID uint64) (domain.Bandit, error)
	ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error)
	UpdatePrice(ctx context.Context, banditID uint64, price decimal.Decimal) (domain.Bandit, error)
}

type ProjectService struct {
	projectRepo ProjectRepository
	banditRepo  BanditRepository
}

func NewProjectService(projectRepo ProjectRepository, banditRepo BanditRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		banditRepo:  banditRepo,
	}
}

type CreateProjectInput struct {
	Description string
	ImagePath   string
	Prices      []decimal.Decimal
}

// newArm builds an arm with the uninformative prior.
func newArm(projectID uint64, price decimal.Decimal) domain.Bandit {
	b := domain.Bandit{ProjectID: projectID, Price: price}
	bandit.NewStatistics().ApplyTo(&b)
	return b
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than 0, got %s", domain.ErrInvalidArgument, price)
	}
	return nil
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create project")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if in.Description == "" {
		logger.Error("Invalid project data: description is required")
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	}

	seen := make(map[string]struct{}, len(in.Prices))
	bandits := make([]domain.Bandit, 0, len(in.Prices))
	for _, p := range in.Prices {
		if err := validatePrice(p); err != nil {
			return nil, err
		}
		key := p.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate price %s", domain.ErrInvalidArgument, key)
		}
		seen[key] = struct{}{}
		bandits = append(bandits, newArm(0, p))
	}

	project := &domain.Project{
		Description:   in.Description,
		ImagePath:     in.ImagePath,
		NumberBandits: len(bandits),
		Bandits:       bandits,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		logger.Error("failed to create new project", err)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logger.Info("project created", "project_id", project.ID, "bandits", len(bandits))

	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID uint64) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	p, err := s.projectRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all projects", err)
		return nil, err
	}

	return projects, nil
}

// OptimalPrice returns the cached result of the last selection. The price is
// nil until a selection has been persisted.
func (s *ProjectService) OptimalPrice(ctx context.Context, projectID uint64) (domain.OptimalPriceResponse, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.OptimalPriceResponse{}, err
	}

	res := domain.OptimalPriceResponse{
		ProjectID:        p.ID,
		Description:      p.Description,
		LastAlgorithmRun: p.LastAlgorithmRun,
	}
	if p.OptimalPrice.Valid {
		f, _ := p.OptimalPrice.Decimal.Float64()
		res.OptimalPrice = &f
	}

	return res, nil
}

//  Arms

func (s *ProjectService) AddBandit(ctx context.Context, projectID uint64, price decimal.Decimal) (*domain.Bandit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	existing, err := s.banditRepo.ListBandits(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.Price.Equal(price) {
			return nil, fmt.Errorf("%w: project %d already tests price %s", domain.ErrInvalidArgument, projectID, price)
		}
	}

	b := newArm(projectID, price)
	if err := s.banditRepo.Create(ctx, &b); err != nil {
		logger.Error("failed to add bandit", err)
		return nil, err
	}

	logger.Info("bandit added", "project_id", projectID, "bandit_id", b.ID, "price", price.String())

	return &b, nil
}

func (s *ProjectService) ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	return s.banditRepo.ListBandits(ctx, projectID)
}

// ChangePrice edits an arm's price. It is refused once the arm has trials.
func (s *ProjectService) ChangePrice(ctx context.Context, banditID uint64, price decimal.Decimal) (*domain.Bandit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	current, err := s.banditRepo.GetBandit(ctx, banditID)
	if err != nil {
		return nil, err
	}
	if current.Trial > 0 {
		return nil, fmt.Errorf("%w: bandit %d already has %d trials, price is immutable",
			domain.ErrInvalidArgument, banditID, current.Trial)
	}

	// the repository re-checks under a row lock
	updated, err := s.banditRepo.UpdatePrice(ctx, banditID, price)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
