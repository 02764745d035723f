// File: internal/category/model.go
package category

import (
	"pcstore_backend/internal/common"
)

// Category groups products in the catalog.
type Category struct {
	common.BaseModel `bson:",inline"`
	Name             string `bson:"name" json:"name"`
	Slug             string `bson:"slug" json:"slug"`
	Description      string `bson:"description,omitempty" json:"description,omitempty"`
	Image            string `bson:"image,omitempty" json:"image,omitempty"`
}

// --- DTOs ---

// CreateCategoryRequest is the body of POST /api/categories. Image may be a URL or a list of URLs;
// only the first one is kept.
type CreateCategoryRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Description string            `json:"description" binding:"max=2000"`
	Image       common.ImageInput `json:"image"`
}

// UpdateCategoryRequest is a partial update; nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string           `json:"name" binding:"omitempty,max=100"`
	Description *string           `json:"description" binding:"omitempty,max=2000"`
	Image       common.ImageInput `json:"image"`
}

// ListResult is a page of categories.
type ListResult struct {
	Categories []Category         `json:"categories"`
	Pagination *common.Pagination `json:"pagination"`
}
