package category

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/media"
	"pcstore_backend/internal/platform/cache"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *Category) error {
	args := m.Called(ctx, category)
	if args.Error(0) == nil {
		category.Stamp(time.Now())
	}
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Category, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockCategoryRepository) NameOrSlugTaken(ctx context.Context, name, slug string, excludeID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, name, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, q common.ListQuery) ([]Category, int64, error) {
	args := m.Called(ctx, q)
	var items []Category
	if args.Get(0) != nil {
		items = args.Get(0).([]Category)
	}
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// destroyRecorder stands in for the Cloudinary API and records destroyed asset ids.
type destroyRecorder struct {
	mu        sync.Mutex
	destroyed []string
	err       error
}

func (d *destroyRecorder) Upload(context.Context, interface{}, uploader.UploadParams) (*uploader.UploadResult, error) {
	return nil, errors.New("not used")
}

func (d *destroyRecorder) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = append(d.destroyed, params.PublicID)
	if d.err != nil {
		return nil, d.err
	}
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func newTestService(repo Repository, backend media.Backend) Service {
	logger := zap.NewNop()
	client := media.NewClient(backend, &config.Config{ExternalCallTimeout: time.Second}, logger)
	return NewService(repo, media.NewCleaner(client, logger), cache.Noop{}, logger)
}

const (
	imageU1 = "https://res.cloudinary.com/demo/image/upload/v1700000000/categories/gpu.jpg"
	imageU2 = "https://res.cloudinary.com/demo/image/upload/v1700000001/categories/gpu-new.png"
)

func TestCreateCategory_DerivesSlug(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	repo.On("NameOrSlugTaken", mock.Anything, "Graphics Cards!!", "graphics-cards", primitive.NilObjectID).Return(false, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Category) bool {
		return c.Slug == "graphics-cards" && c.Image == imageU1
	})).Return(nil).Once()

	req := CreateCategoryRequest{Name: "  Graphics Cards!! ", Image: common.ImageInput{URLs: []string{imageU1, imageU2}, Set: true}}
	c, err := svc.CreateCategory(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Graphics Cards!!", c.Name)
	assert.False(t, c.ID.IsZero())
	repo.AssertExpectations(t)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	repo.On("NameOrSlugTaken", mock.Anything, "GPUs", "gpus", primitive.NilObjectID).Return(true, nil).Once()

	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "GPUs"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCategory_NameWithoutAlphanumerics(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "!!!"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateCategory_ImageReplacementDeletesOldImageOnce(t *testing.T) {
	repo := new(MockCategoryRepository)
	backend := &destroyRecorder{}
	svc := newTestService(repo, backend)

	id := primitive.NewObjectID()
	withU1 := &Category{BaseModel: common.BaseModel{ID: id}, Name: "GPUs", Slug: "gpus", Image: imageU1}
	withU2 := &Category{BaseModel: common.BaseModel{ID: id}, Name: "GPUs", Slug: "gpus", Image: imageU2}
	repo.On("FindByID", mock.Anything, id).Return(withU1, nil).Once()
	repo.On("FindByID", mock.Anything, id).Return(withU2, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()

	req := UpdateCategoryRequest{Image: common.ImageInput{URLs: []string{imageU2}, Set: true}}

	updated, err := svc.UpdateCategory(context.Background(), id.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, imageU2, updated.Image)

	wantID, ok := media.ExtractAssetID(imageU1)
	require.True(t, ok)
	assert.Equal(t, []string{wantID}, backend.destroyed)

	_, err = svc.UpdateCategory(context.Background(), id.Hex(), req)
	require.NoError(t, err)
	assert.Len(t, backend.destroyed, 1, "same image again triggers no deletion")
}

func TestUpdateCategory_CleanupFailureDoesNotFailUpdate(t *testing.T) {
	repo := new(MockCategoryRepository)
	backend := &destroyRecorder{err: errors.New("cloudinary down")}
	svc := newTestService(repo, backend)

	id := primitive.NewObjectID()
	repo.On("FindByID", mock.Anything, id).Return(&Category{BaseModel: common.BaseModel{ID: id}, Name: "GPUs", Image: imageU1}, nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(c *Category) bool { return c.Image == "" })).Return(nil).Once()

	updated, err := svc.UpdateCategory(context.Background(), id.Hex(), UpdateCategoryRequest{Image: common.ImageInput{Set: true}})
	require.NoError(t, err)
	assert.Empty(t, updated.Image)
	assert.Len(t, backend.destroyed, 1)
}

func TestUpdateCategory_RenameChecksOthersOnly(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	id := primitive.NewObjectID()
	repo.On("FindByID", mock.Anything, id).Return(&Category{BaseModel: common.BaseModel{ID: id}, Name: "GPUs", Slug: "gpus"}, nil).Once()
	repo.On("NameOrSlugTaken", mock.Anything, "Graphics Cards", "graphics-cards", id).Return(false, nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	name := "Graphics Cards"
	updated, err := svc.UpdateCategory(context.Background(), id.Hex(), UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "graphics-cards", updated.Slug)
	repo.AssertExpectations(t)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	repo := new(MockCategoryRepository)
	backend := &destroyRecorder{}
	svc := newTestService(repo, backend)

	id := primitive.NewObjectID()
	repo.On("FindByID", mock.Anything, id).Return(nil, common.ErrNotFound).Once()

	_, err := svc.UpdateCategory(context.Background(), id.Hex(), UpdateCategoryRequest{Image: common.ImageInput{URLs: []string{imageU2}, Set: true}})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, backend.destroyed)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteCategory_RemovesImageThenRecord(t *testing.T) {
	repo := new(MockCategoryRepository)
	backend := &destroyRecorder{err: errors.New("timeout")}
	svc := newTestService(repo, backend)

	id := primitive.NewObjectID()
	existing := &Category{BaseModel: common.BaseModel{ID: id}, Name: "GPUs", Image: imageU1}
	repo.On("FindByID", mock.Anything, id).Return(existing, nil).Once()
	repo.On("Delete", mock.Anything, id).Return(nil).Once()

	deleted, err := svc.DeleteCategory(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, existing, deleted)
	assert.Equal(t, []string{"categories/gpu"}, backend.destroyed)
	repo.AssertExpectations(t)
}

func TestDeleteCategory_InvalidID(t *testing.T) {
	svc := newTestService(new(MockCategoryRepository), &destroyRecorder{})

	_, err := svc.DeleteCategory(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestListCategories_PageBeyondRange(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	q := common.ListQuery{Page: 5, Limit: 10}
	repo.On("List", mock.Anything, q).Return(nil, int64(15), nil).Once()

	result, err := svc.ListCategories(context.Background(), q)
	require.NoError(t, err)
	assert.NotNil(t, result.Categories)
	assert.Empty(t, result.Categories)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.Equal(t, int64(15), result.Pagination.TotalCount)
	assert.False(t, result.Pagination.HasNextPage)
	assert.True(t, result.Pagination.HasPrevPage)
}

func TestGetCategory_ByIDOrSlug(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := newTestService(repo, &destroyRecorder{})

	id := primitive.NewObjectID()
	repo.On("FindByID", mock.Anything, id).Return(&Category{Name: "by id"}, nil).Once()
	repo.On("FindBySlug", mock.Anything, "gpus").Return(&Category{Name: "by slug"}, nil).Once()

	c, err := svc.GetCategory(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "by id", c.Name)

	c, err = svc.GetCategory(context.Background(), "gpus")
	require.NoError(t, err)
	assert.Equal(t, "by slug", c.Name)
}

func TestSearchFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, searchFilter(""))

	f := searchFilter("rtx 4090.ti")
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	first := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `rtx 4090\.ti`, first.Pattern)
	assert.Equal(t, "i", first.Options)
}
