package storage

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"gopricetracker/internal/aliexpress/business/models"
)

const (
	categoryCollection = "product_categories"
	categoryCacheSize  = 512
)

// CategoryRepository resolves marketplace display category ids to stored
// category references. The same handful of ids repeats across thousands of
// products in one run, so results (misses included) go through an LRU cache.
type CategoryRepository struct {
	col   *mongo.Collection
	cache *lru.Cache[string, primitive.ObjectID]
}

func NewCategoryRepository(db *mongo.Database) (*CategoryRepository, error) {
	cache, err := lru.New[string, primitive.ObjectID](categoryCacheSize)
	if err != nil {
		return nil, err
	}
	return &CategoryRepository{col: db.Collection(categoryCollection), cache: cache}, nil
}

// FindRef returns the reference id for a display category, or the zero id when
// no category document exists for it.
func (r *CategoryRepository) FindRef(ctx context.Context, cID string) (primitive.ObjectID, error) {
	if cID == "" {
		return primitive.NilObjectID, nil
	}
	if ref, ok := r.cache.Get(cID); ok {
		return ref, nil
	}
	var doc models.CategoryDocument
	err := r.col.FindOne(ctx, bson.M{"cId": cID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.cache.Add(cID, primitive.NilObjectID)
		return primitive.NilObjectID, nil
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("find category %s: %w", cID, err)
	}
	r.cache.Add(cID, doc.ID)
	return doc.ID, nil
}
