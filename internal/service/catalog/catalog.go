package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"toolhub-service/internal/domain/catalog"

	"go.uber.org/zap"
)

// Repository is the persistence surface the catalog service needs.
type Repository interface {
	Create(ctx context.Context, item *catalog.Item) error
	FindByID(ctx context.Context, kind catalog.ItemKind, id int64) (*catalog.Item, error)
	List(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) ([]catalog.Item, int64, error)
	UpdateStatus(ctx context.Context, kind catalog.ItemKind, id int64, status catalog.SubmissionStatus) error
	Delete(ctx context.Context, kind catalog.ItemKind, id int64) error
	Like(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64, userEmail string) error
	Unlike(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64) error
}

type CatalogService struct {
	catalogRepo Repository
	logger      *zap.Logger
}

func NewCatalogService(catalogRepo Repository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// Submit files a new directory entry. Submissions start pending and
// stay invisible to the public until a moderator approves them.
func (s *CatalogService) Submit(ctx context.Context, kind catalog.ItemKind, userID int64, req *catalog.SubmitItemRequest) (*catalog.Item, error) {
	item := &catalog.Item{
		Kind:        kind,
		Name:        req.Name,
		URL:         req.URL,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		Category:    sql.NullString{String: req.Category, Valid: req.Category != ""},
		Tags:        req.Tags,
		SubmittedBy: userID,
		Status:      catalog.StatusPending,
	}

	if err := s.catalogRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("catalog item submitted",
		zap.String("kind", string(kind)),
		zap.Int64("item_id", item.ID),
		zap.Int64("user_id", userID),
	)

	return item, nil
}

// GetItem retrieves a single directory entry
func (s *CatalogService) GetItem(ctx context.Context, kind catalog.ItemKind, id int64) (*catalog.Item, error) {
	return s.catalogRepo.FindByID(ctx, kind, id)
}

// ListApproved retrieves the public view: approved entries only
func (s *CatalogService) ListApproved(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) (*catalog.ItemListResponse, error) {
	approved := catalog.StatusApproved
	filters.Status = &approved
	return s.list(ctx, kind, filters)
}

// ListAll retrieves entries in any status (admin view)
func (s *CatalogService) ListAll(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) (*catalog.ItemListResponse, error) {
	return s.list(ctx, kind, filters)
}

func (s *CatalogService) list(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) (*catalog.ItemListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	items, total, err := s.catalogRepo.List(ctx, kind, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &catalog.ItemListResponse{
		Items:      items,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Moderate approves or rejects a pending submission
func (s *CatalogService) Moderate(ctx context.Context, kind catalog.ItemKind, id int64, status catalog.SubmissionStatus) (*catalog.Item, error) {
	if err := s.catalogRepo.UpdateStatus(ctx, kind, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("catalog item moderated",
		zap.String("kind", string(kind)),
		zap.Int64("item_id", id),
		zap.String("status", string(status)),
	)

	return s.catalogRepo.FindByID(ctx, kind, id)
}

// DeleteItem removes an entry from the directory
func (s *CatalogService) DeleteItem(ctx context.Context, kind catalog.ItemKind, id int64) error {
	if err := s.catalogRepo.Delete(ctx, kind, id); err != nil {
		return err
	}

	s.logger.Info("catalog item deleted",
		zap.String("kind", string(kind)),
		zap.Int64("item_id", id),
	)

	return nil
}

// Like records a user's like once; duplicates surface as conflicts
func (s *CatalogService) Like(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64, userEmail string) error {
	return s.catalogRepo.Like(ctx, kind, itemID, userID, userEmail)
}

// Unlike withdraws a previous like
func (s *CatalogService) Unlike(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64) error {
	return s.catalogRepo.Unlike(ctx, kind, itemID, userID)
}
