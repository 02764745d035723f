// File: internal/common/model.go
package common

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseModel defines common fields for MongoDB documents. Embed it with `bson:",inline"`.
type BaseModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Stamp sets the timestamps for an insert (zero ID) or an update.
func (m *BaseModel) Stamp(now time.Time) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// ParseObjectID converts a path parameter into an ObjectID, failing with a 400.
func ParseObjectID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrBadRequest.WithDetails("Invalid " + what + " ID format.")
	}
	return id, nil
}
