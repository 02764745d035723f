package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pcstore_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) respond(args mock.Arguments) (*ProductResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductResponse), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	return m.respond(m.Called(ctx, req))
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*ProductResponse, error) {
	return m.respond(m.Called(ctx, id))
}

func (m *MockProductService) ListProducts(ctx context.Context, q common.ListQuery) (*ListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ListResult), args.Error(1)
}

func (m *MockProductService) ListProductsByCategory(ctx context.Context, categoryID string, q common.ListQuery) (*ListResult, error) {
	args := m.Called(ctx, categoryID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ListResult), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*ProductResponse, error) {
	return m.respond(m.Called(ctx, id, req))
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) (*ProductResponse, error) {
	return m.respond(m.Called(ctx, id))
}

func passThrough(c *gin.Context) { c.Next() }

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api"), passThrough, passThrough)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestListProductsHandler_Envelope(t *testing.T) {
	svc := new(MockProductService)
	q := common.ListQuery{Page: 2, Limit: 10, Search: "rtx"}
	svc.On("ListProducts", mock.Anything, q).Return(&ListResult{
		Products:   []ProductResponse{{Name: "RTX 4070", Images: []string{}}},
		Pagination: common.NewPagination("totalProducts", 15, 2, 10),
	}, nil).Once()

	w := serve(setupRouter(svc), http.MethodGet, "/api/products?page=2&limit=10&search=rtx", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(15), pagination["totalProducts"])
	assert.Equal(t, float64(2), pagination["totalPages"])
	assert.Equal(t, false, pagination["hasNextPage"])
	assert.Equal(t, true, pagination["hasPrevPage"])
	product := body["products"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, product["category"])
	svc.AssertExpectations(t)
}

func TestListProductsByCategoryHandler(t *testing.T) {
	svc := new(MockProductService)
	catID := primitive.NewObjectID().Hex()
	q := common.ListQuery{Page: 1, Limit: 10}
	svc.On("ListProductsByCategory", mock.Anything, catID, q).Return(&ListResult{
		Products:   []ProductResponse{},
		Pagination: common.NewPagination("totalProducts", 0, 1, 10),
	}, nil).Once()

	w := serve(setupRouter(svc), http.MethodGet, "/api/products/category/"+catID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":[]`)
	svc.AssertExpectations(t)
}

func TestListProductsHandler_InvalidLimit(t *testing.T) {
	svc := new(MockProductService)

	w := serve(setupRouter(svc), http.MethodGet, "/api/products?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_LIMIT")
	svc.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestCreateProductHandler_RejectsNonPositivePrice(t *testing.T) {
	svc := new(MockProductService)
	r := setupRouter(svc)

	w := serve(r, http.MethodPost, "/api/products", `{"name":"RTX","brand":"NVIDIA","category":"x","price":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCreateProductHandler(t *testing.T) {
	svc := new(MockProductService)
	catID := primitive.NewObjectID().Hex()
	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req CreateProductRequest) bool {
		return *req.Price == 499 && req.Images.First() == "https://cdn/a.jpg" && req.Category == catID
	})).Return(&ProductResponse{Name: "RTX", Price: 499, Images: []string{"https://cdn/a.jpg"}}, nil).Once()

	body := `{"name":"RTX","brand":"NVIDIA","category":"` + catID + `","price":499,"images":"https://cdn/a.jpg"}`
	w := serve(setupRouter(svc), http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestDeleteProductHandler(t *testing.T) {
	svc := new(MockProductService)
	svc.On("DeleteProduct", mock.Anything, "abc").Return(&ProductResponse{Name: "RTX"}, nil).Once()

	w := serve(setupRouter(svc), http.MethodDelete, "/api/products/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Product deleted successfully", body["message"])
	assert.Equal(t, "RTX", body["product"].(map[string]interface{})["name"])
}

func TestGetProductHandler_BadID(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetProduct", mock.Anything, "zzz").Return(nil, common.ErrBadRequest.WithDetails("Invalid product ID format.")).Once()

	w := serve(setupRouter(svc), http.MethodGet, "/api/products/zzz", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
