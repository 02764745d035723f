// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/platform/database"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	FindByIdentityID(ctx context.Context, identityID string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	UpdateRole(ctx context.Context, username, role string) (*User, error)
}

// Indexes are the unique constraints that back registration against concurrent requests.
func Indexes() database.IndexSet {
	return database.IndexSet{
		Collection: collectionName,
		Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "identityId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_identity_id")},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
	}
}

type mongoRepository struct {
	coll     *mongo.Collection
	validate *validator.Validate
}

// NewMongoRepository creates a new MongoDB user repository.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName), validate: validator.New()}
}

// Create validates and inserts a user. Validation failures are ErrInvalidUserData and
// unique index violations are ErrAlreadyExists.
func (r *mongoRepository) Create(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)
	if user.Role == "" {
		user.Role = common.RoleUser
	}
	if err := r.validate.Struct(user); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return common.ErrInvalidUserData.WithDetails(common.FormatValidationErrors(verrs))
		}
		return common.ErrInvalidUserData.WithDetails(err.Error())
	}

	user.Stamp(time.Now().UTC())
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrAlreadyExists.WithDetails("User with this username or email already exists.")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M, notFound string) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails(notFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": strings.TrimSpace(username)},
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
	}}
	return r.findOne(ctx, filter, "User not found.")
}

func (r *mongoRepository) FindByIdentityID(ctx context.Context, identityID string) (*User, error) {
	return r.findOne(ctx, bson.M{"identityId": identityID}, "User not found for this identity.")
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "User not found.")
}

func (r *mongoRepository) UpdateRole(ctx context.Context, username, role string) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}}

	var u User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"username": username}, update, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &u, nil
}
