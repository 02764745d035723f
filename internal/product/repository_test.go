package product

import (
	"context"
	"math"
	"testing"
	"time"

	"pcstore_backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func productDocs(n int) []bson.D {
	docs := make([]bson.D, 0, n)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		docs = append(docs, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "RTX 40 series"},
			{Key: "brand", Value: "NVIDIA"},
			{Key: "price", Value: 499.0},
			{Key: "createdAt", Value: created.Add(-time.Duration(i) * time.Hour)},
		})
	}
	return docs
}

func countResponse(ns string, n int64) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: n}})
}

func commandNames(events []*event.CommandStartedEvent) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.CommandName)
	}
	return names
}

func TestMongoRepositoryList(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second page window", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionName
		mt.AddMockResponses(
			countResponse(ns, 15),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDocs(5)...),
		)
		repo := NewMongoRepository(mt.DB)

		products, total, err := repo.List(context.Background(), ListFilter{
			ListQuery: common.ListQuery{Page: 2, Limit: 10, Search: "rtx"},
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(15), total)
		assert.Len(mt, products, 5)

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"aggregate", "find"}, commandNames(events))

		find := events[1].Command
		assert.Equal(mt, int64(10), find.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(10), find.Lookup("limit").AsInt64())

		sortKeys, err := find.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, sortKeys, 2)
		assert.Equal(mt, "createdAt", sortKeys[0].Key())
		assert.Equal(mt, int64(-1), sortKeys[0].Value().AsInt64())
		assert.Equal(mt, "_id", sortKeys[1].Key())
		assert.Equal(mt, int64(-1), sortKeys[1].Value().AsInt64())

		_, err = find.Lookup("filter").Document().LookupErr("$or")
		assert.NoError(mt, err)
	})

	mt.Run("category scope", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionName
		catID := primitive.NewObjectID()
		mt.AddMockResponses(
			countResponse(ns, 2),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDocs(2)...),
		)
		repo := NewMongoRepository(mt.DB)

		products, total, err := repo.List(context.Background(), ListFilter{
			ListQuery:  common.ListQuery{Page: 1, Limit: 10},
			CategoryID: catID,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), total)
		assert.Len(mt, products, 2)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		find := events[1].Command
		assert.Equal(mt, catID, find.Lookup("filter", "category").ObjectID())
		assert.Equal(mt, int64(0), find.Lookup("skip").AsInt64())
	})

	mt.Run("page beyond total skips the find", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionName
		mt.AddMockResponses(countResponse(ns, 15))
		repo := NewMongoRepository(mt.DB)

		products, total, err := repo.List(context.Background(), ListFilter{
			ListQuery: common.ListQuery{Page: 3, Limit: 10},
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(15), total)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
		assert.Equal(mt, []string{"aggregate"}, commandNames(mt.GetAllStartedEvents()))
	})

	mt.Run("unaddressable page is an empty result", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionName
		mt.AddMockResponses(countResponse(ns, 15))
		repo := NewMongoRepository(mt.DB)

		products, total, err := repo.List(context.Background(), ListFilter{
			ListQuery: common.ListQuery{Page: math.MaxInt, Limit: 100},
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(15), total)
		assert.Empty(mt, products)
		assert.Equal(mt, []string{"aggregate"}, commandNames(mt.GetAllStartedEvents()))
	})
}
