// File: internal/product/service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"pcstore_backend/internal/category"
	"pcstore_backend/internal/common"
	"pcstore_backend/internal/media"
	"pcstore_backend/internal/platform/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CategoryLookup resolves category ids for population. category.Repository satisfies it.
type CategoryLookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]category.Category, error)
}

// Service defines the product operations.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*ProductResponse, error)
	ListProducts(ctx context.Context, q common.ListQuery) (*ListResult, error)
	ListProductsByCategory(ctx context.Context, categoryID string, q common.ListQuery) (*ListResult, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) (*ProductResponse, error)
}

type service struct {
	repo       Repository
	categories CategoryLookup
	images     media.ImageCleaner
	cache      cache.ListCache
	logger     *zap.Logger
}

// NewService creates a new product service.
func NewService(repo Repository, categories CategoryLookup, images media.ImageCleaner, listCache cache.ListCache, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		categories: categories,
		images:     images,
		cache:      listCache,
		logger:     logger.Named("ProductService"),
	}
}

// validate checks the merged product before it is persisted.
func validate(p *Product) error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "The name field is required."
	}
	if p.Brand == "" {
		details["brand"] = "The brand field is required."
	}
	if p.Price <= 0 {
		details["price"] = "The price must be greater than 0."
	}
	if p.Stock < 0 {
		details["stock"] = "The stock must be 0 or greater."
	}
	if p.Category.IsZero() {
		details["category"] = "The category field is required."
	}
	if len(details) > 0 {
		return common.NewValidationAPIError(details)
	}
	return nil
}

func parseCategoryRef(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, common.NewValidationAPIError(map[string]string{
			"category": "The category must be a valid category ID.",
		})
	}
	return id, nil
}

// populate attaches each product's category. Missing categories populate as nil.
func (s *service) populate(ctx context.Context, products []Product) ([]ProductResponse, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(products))
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if p.Category.IsZero() {
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			ids = append(ids, p.Category)
		}
	}

	byID := make(map[primitive.ObjectID]*category.Category, len(ids))
	if len(ids) > 0 {
		cats, err := s.categories.FindByIDs(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to populate product categories", zap.Int("categoryCount", len(ids)), zap.Error(err))
			return nil, err
		}
		for i := range cats {
			byID[cats[i].ID] = &cats[i]
		}
	}

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i], byID[products[i].Category]))
	}
	return out, nil
}

func (s *service) populateOne(ctx context.Context, p *Product) (*ProductResponse, error) {
	resp, err := s.populate(ctx, []Product{*p})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	categoryID, err := parseCategoryRef(req.Category)
	if err != nil {
		return nil, err
	}

	p := &Product{
		Name:        strings.TrimSpace(req.Name),
		Brand:       strings.TrimSpace(req.Brand),
		Description: strings.TrimSpace(req.Description),
		Category:    categoryID,
		Featured:    req.Featured,
		Images:      req.Images.URLs,
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.logger.Info("Product created successfully", zap.String("id", p.ID.Hex()), zap.String("categoryID", categoryID.Hex()))
	return s.populateOne(ctx, p)
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductResponse, error) {
	objID, err := common.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	return s.populateOne(ctx, p)
}

type cachedPage struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

func (s *service) list(ctx context.Context, f ListFilter) (*ListResult, error) {
	key := fmt.Sprintf("category=%s&page=%d&limit=%d&search=%s", f.CategoryID.Hex(), f.Page, f.Limit, f.Search)

	var page cachedPage
	if !s.cache.Get(ctx, cache.NamespaceProducts, key, &page) {
		items, total, err := s.repo.List(ctx, f)
		if err != nil {
			s.logger.Error("Failed to list products", zap.String("categoryID", f.CategoryID.Hex()), zap.Error(err))
			return nil, err
		}
		populated, err := s.populate(ctx, items)
		if err != nil {
			return nil, err
		}
		page = cachedPage{Products: populated, Total: total}
		s.cache.Set(ctx, cache.NamespaceProducts, key, page)
	}
	if page.Products == nil {
		page.Products = []ProductResponse{}
	}

	return &ListResult{
		Products:   page.Products,
		Pagination: common.NewPagination("totalProducts", page.Total, f.Page, f.Limit),
	}, nil
}

func (s *service) ListProducts(ctx context.Context, q common.ListQuery) (*ListResult, error) {
	return s.list(ctx, ListFilter{ListQuery: q})
}

func (s *service) ListProductsByCategory(ctx context.Context, categoryID string, q common.ListQuery) (*ListResult, error) {
	objID, err := common.ParseObjectID(categoryID, "category")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, ListFilter{ListQuery: q, CategoryID: objID})
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*ProductResponse, error) {
	objID, err := common.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		updated.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if updated.Category, err = parseCategoryRef(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.Stock != nil {
		updated.Stock = *req.Stock
	}
	if req.Featured != nil {
		updated.Featured = *req.Featured
	}
	if req.Images.Set {
		updated.Images = req.Images.URLs
		if updated.Images == nil {
			updated.Images = []string{}
		}
	}
	if err := validate(&updated); err != nil {
		return nil, err
	}

	// Only the primary image is tracked for replacement.
	if req.Images.Set {
		oldFirst, newFirst := firstImage(existing.Images), firstImage(updated.Images)
		if oldFirst != "" && newFirst != "" && oldFirst != newFirst {
			s.images.Remove(ctx, "product image replaced", oldFirst)
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.logger.Info("Product updated successfully", zap.String("id", updated.ID.Hex()))
	return s.populateOne(ctx, &updated)
}

func (s *service) DeleteProduct(ctx context.Context, id string) (*ProductResponse, error) {
	objID, err := common.ParseObjectID(id, "product")
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if failed := s.images.Remove(ctx, "product deleted", existing.Images...); failed > 0 {
		s.logger.Warn("Some product images could not be removed", zap.String("id", id), zap.Int("failed", failed))
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.NamespaceProducts)
	s.logger.Info("Product deleted successfully", zap.String("id", id))

	resp := ToProductResponse(existing, nil)
	return &resp, nil
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
