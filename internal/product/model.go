// File: internal/product/model.go
package product

import (
	"time"

	"pcstore_backend/internal/category"
	"pcstore_backend/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item. Category holds the id of its category.
type Product struct {
	common.BaseModel `bson:",inline"`
	Name             string             `bson:"name" json:"name"`
	Brand            string             `bson:"brand" json:"brand"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Category         primitive.ObjectID `bson:"category" json:"category"`
	Price            float64            `bson:"price" json:"price"`
	Stock            int                `bson:"stock" json:"stock"`
	Images           []string           `bson:"images" json:"images"`
	Featured         bool               `bson:"featured" json:"featured"`
}

// --- DTOs ---

type CreateProductRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Brand       string            `json:"brand" binding:"required,max=100"`
	Description string            `json:"description" binding:"max=5000"`
	Category    string            `json:"category" binding:"required"`
	Price       *float64          `json:"price" binding:"required,gt=0"`
	Stock       *int              `json:"stock" binding:"omitempty,gte=0"`
	Featured    bool              `json:"featured"`
	Images      common.ImageInput `json:"images"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string           `json:"name" binding:"omitempty,max=200"`
	Brand       *string           `json:"brand" binding:"omitempty,max=100"`
	Description *string           `json:"description" binding:"omitempty,max=5000"`
	Category    *string           `json:"category"`
	Price       *float64          `json:"price" binding:"omitempty,gt=0"`
	Stock       *int              `json:"stock" binding:"omitempty,gte=0"`
	Featured    *bool             `json:"featured"`
	Images      common.ImageInput `json:"images"`
}

// CategorySummary is the populated category of a product.
type CategorySummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Slug  string             `json:"slug"`
	Image string             `json:"image,omitempty"`
}

// ProductResponse is a product with its category populated. Category is nil when the
// referenced category no longer exists.
type ProductResponse struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	Brand       string             `json:"brand"`
	Description string             `json:"description,omitempty"`
	Category    *CategorySummary   `json:"category"`
	Price       float64            `json:"price"`
	Stock       int                `json:"stock"`
	Images      []string           `json:"images"`
	Featured    bool               `json:"featured"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// ToProductResponse converts a Product using cat as its populated category.
func ToProductResponse(p *Product, cat *category.Category) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Images:      images,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if cat != nil {
		resp.Category = &CategorySummary{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Image: cat.Image}
	}
	return resp
}

// ListFilter narrows a product listing. A zero CategoryID means every category.
type ListFilter struct {
	common.ListQuery
	CategoryID primitive.ObjectID
}

type ListResult struct {
	Products   []ProductResponse  `json:"products"`
	Pagination *common.Pagination `json:"pagination"`
}
