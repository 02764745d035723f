// File: internal/category/service.go
package category

import (
	"context"
	"fmt"
	"strings"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/media"
	"pcstore_backend/internal/platform/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service defines the category operations.
type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, idOrSlug string) (*Category, error)
	ListCategories(ctx context.Context, q common.ListQuery) (*ListResult, error)
	UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id string) (*Category, error)
}

type service struct {
	repo   Repository
	images media.ImageCleaner
	cache  cache.ListCache
	logger *zap.Logger
}

// NewService creates a new category service.
func NewService(repo Repository, images media.ImageCleaner, listCache cache.ListCache, logger *zap.Logger) Service {
	return &service{repo: repo, images: images, cache: listCache, logger: logger.Named("CategoryService")}
}

// nameAndSlug trims name and derives its slug, rejecting names without any letter or digit.
func nameAndSlug(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "", common.NewValidationAPIError(map[string]string{"name": "The name field is required."})
	}
	slug := Slugify(name)
	if slug == "" {
		return "", "", common.NewValidationAPIError(map[string]string{"name": "The name must contain letters or digits."})
	}
	return name, slug, nil
}

func (s *service) ensureUnique(ctx context.Context, name, slug string, excludeID primitive.ObjectID) error {
	taken, err := s.repo.NameOrSlugTaken(ctx, name, slug, excludeID)
	if err != nil {
		s.logger.Error("Failed to check category uniqueness", zap.String("name", name), zap.Error(err))
		return err
	}
	if taken {
		return duplicateError()
	}
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.NamespaceCategories)
	// Product responses embed their category.
	s.cache.Invalidate(ctx, cache.NamespaceProducts)
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name, slug, err := nameAndSlug(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, name, slug, primitive.NilObjectID); err != nil {
		return nil, err
	}

	c := &Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Image:       req.Image.First(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("Category created successfully", zap.String("id", c.ID.Hex()), zap.String("slug", c.Slug))
	return c, nil
}

// GetCategory accepts an ObjectID or a slug.
func (s *service) GetCategory(ctx context.Context, idOrSlug string) (*Category, error) {
	if id, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.FindBySlug(ctx, idOrSlug)
}

type cachedPage struct {
	Categories []Category `json:"categories"`
	Total      int64      `json:"total"`
}

func (s *service) ListCategories(ctx context.Context, q common.ListQuery) (*ListResult, error) {
	key := fmt.Sprintf("page=%d&limit=%d&search=%s", q.Page, q.Limit, q.Search)

	var page cachedPage
	if !s.cache.Get(ctx, cache.NamespaceCategories, key, &page) {
		items, total, err := s.repo.List(ctx, q)
		if err != nil {
			s.logger.Error("Failed to list categories", zap.Error(err))
			return nil, err
		}
		page = cachedPage{Categories: items, Total: total}
		s.cache.Set(ctx, cache.NamespaceCategories, key, page)
	}
	if page.Categories == nil {
		page.Categories = []Category{}
	}

	return &ListResult{
		Categories: page.Categories,
		Pagination: common.NewPagination("totalCategories", page.Total, q.Page, q.Limit),
	}, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error) {
	objID, err := common.ParseObjectID(id, "category")
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Name != nil {
		name, slug, err := nameAndSlug(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != existing.Name {
			if err := s.ensureUnique(ctx, name, slug, existing.ID); err != nil {
				return nil, err
			}
			updated.Name, updated.Slug = name, slug
		}
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Image.Set {
		updated.Image = req.Image.First()
		if existing.Image != "" && updated.Image != existing.Image {
			s.images.Remove(ctx, "category image replaced", existing.Image)
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("Category updated successfully", zap.String("id", updated.ID.Hex()))
	return &updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) (*Category, error) {
	objID, err := common.ParseObjectID(id, "category")
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if existing.Image != "" {
		s.images.Remove(ctx, "category deleted", existing.Image)
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("Category deleted successfully", zap.String("id", id))
	return existing, nil
}
