package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/plan"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	activePlansCacheKey = "plans:active"
	activePlansCacheTTL = 5 * time.Minute
)

// Repository is the persistence surface the plan service needs.
type Repository interface {
	Create(ctx context.Context, p *plan.Plan) error
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
	ListActive(ctx context.Context) ([]plan.Plan, error)
	List(ctx context.Context, filters *plan.PlanListFilters) ([]plan.Plan, int64, error)
	Update(ctx context.Context, id int64, p *plan.Plan) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*plan.PlanStats, error)
}

type PlanService struct {
	planRepo Repository
	cache    *redis.Client
	logger   *zap.Logger
}

func NewPlanService(planRepo Repository, cache *redis.Client, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		cache:    cache,
		logger:   logger,
	}
}

// CreatePlan creates a new subscription plan
func (s *PlanService) CreatePlan(ctx context.Context, req *plan.CreatePlanRequest) (*plan.Plan, error) {
	p := &plan.Plan{
		Name:        req.Name,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		Features:    req.Features,
		Price:       req.Price,
		Currency:    plan.Currency(strings.ToUpper(string(req.Currency))),
		Duration:    req.Duration,
		IsActive:    true,
		IsPopular:   req.IsPopular,
		SortOrder:   req.SortOrder,
	}

	if err := s.planRepo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create plan", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("plan created",
		zap.Int64("plan_id", p.ID),
		zap.String("name", p.Name),
	)

	return p, nil
}

// GetPlan retrieves a plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*plan.Plan, error) {
	return s.planRepo.FindByID(ctx, id)
}

// ListPublicPlans returns the active plans shown on the pricing page.
// The list is read far more often than it changes, so it sits in redis
// for a few minutes between reads.
func (s *PlanService) ListPublicPlans(ctx context.Context) ([]plan.Plan, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, activePlansCacheKey).Bytes(); err == nil {
			var plans []plan.Plan
			if err := json.Unmarshal(cached, &plans); err == nil {
				return plans, nil
			}
		}
	}

	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(plans); err == nil {
			if err := s.cache.Set(ctx, activePlansCacheKey, data, activePlansCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache active plans", zap.Error(err))
			}
		}
	}

	return plans, nil
}

// ListPlans retrieves plans with filters (admin view)
func (s *PlanService) ListPlans(ctx context.Context, filters *plan.PlanListFilters) (*plan.PlanListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	plans, total, err := s.planRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &plan.PlanListResponse{
		Plans:      plans,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdatePlan updates a plan's editable fields
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, req *plan.UpdatePlanRequest) (*plan.Plan, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Features != nil {
		p.Features = req.Features
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = plan.Currency(strings.ToUpper(string(*req.Currency)))
	}
	if req.Duration != nil {
		p.Duration = *req.Duration
	}
	if req.IsPopular != nil {
		p.IsPopular = *req.IsPopular
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}

	if err := s.planRepo.Update(ctx, id, p); err != nil {
		s.logger.Error("failed to update plan", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("plan updated", zap.Int64("plan_id", id))

	return s.planRepo.FindByID(ctx, id)
}

// ActivatePlan makes a plan purchasable again
func (s *PlanService) ActivatePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.SetActive(ctx, id, true); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("plan activated", zap.Int64("plan_id", id))
	return nil
}

// DeactivatePlan hides a plan from the pricing page
func (s *PlanService) DeactivatePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("plan deactivated", zap.Int64("plan_id", id))
	return nil
}

// DeletePlan removes a plan that no order references
func (s *PlanService) DeletePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("plan deleted", zap.Int64("plan_id", id))
	return nil
}

// GetStats retrieves plan statistics
func (s *PlanService) GetStats(ctx context.Context) (*plan.PlanStats, error) {
	return s.planRepo.GetStats(ctx)
}

func (s *PlanService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, activePlansCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate plan cache", zap.Error(err))
	}
}
