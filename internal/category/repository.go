// File: internal/category/repository.go
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "categories"

// Repository defines the interface for category data operations.
type Repository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Category, error)
	// NameOrSlugTaken reports whether a category other than excludeID uses name or slug.
	NameOrSlugTaken(ctx context.Context, name, slug string, excludeID primitive.ObjectID) (bool, error)
	List(ctx context.Context, q common.ListQuery) ([]Category, int64, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

func Indexes() database.IndexSet {
	return database.IndexSet{
		Collection: collectionName,
		Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_name")},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
		},
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new MongoDB category repository.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// searchFilter matches search as a literal, case-insensitive substring of name, description or slug.
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
		bson.M{"slug": pattern},
	}}
}

func duplicateError() error {
	return common.ErrAlreadyExists.WithDetails("Category with this name already exists.")
}

func (r *mongoRepository) Create(ctx context.Context, category *Category) error {
	category.Stamp(time.Now().UTC())
	if _, err := r.coll.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError()
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Category, error) {
	var c Category
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Category, error) {
	categories := make([]Category, 0, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *mongoRepository) NameOrSlugTaken(ctx context.Context, name, slug string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"name": name}, bson.M{"slug": slug}}}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoRepository) List(ctx context.Context, q common.ListQuery) ([]Category, int64, error) {
	filter := searchFilter(q.Search)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	if q.Skip() >= total {
		return []Category{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find categories: %w", err)
	}
	categories := make([]Category, 0, q.Limit)
	if err := cur.All(ctx, &categories); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *mongoRepository) Update(ctx context.Context, category *Category) error {
	category.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError()
		}
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound.WithDetails("Category not found.")
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound.WithDetails("Category not found.")
	}
	return nil
}
