package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gopricetracker/internal/aliexpress/business/models"
)

const productCollection = "product_details"

// ProductRepository exposes the two store capabilities the ingest needs:
// a thin projection read of stored variants and unordered bulk mutation.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productCollection)}
}

// FindStoredVariants loads only the variant matching fields (c, sp, spKey, pd)
// for one product. The second return reports whether the document exists.
func (r *ProductRepository) FindStoredVariants(ctx context.Context, productID string) ([]models.VariantRecord, bool, error) {
	projection := bson.M{
		"sku_info.sil.c":     1,
		"sku_info.sil.sp":    1,
		"sku_info.sil.spKey": 1,
		"sku_info.sil.pd":    1,
	}
	var doc models.ProductDocument
	err := r.col.FindOne(ctx, bson.M{"_id": productID}, options.FindOne().SetProjection(projection)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find stored variants for %s: %w", productID, err)
	}
	return doc.SkuInfo.Variants, true, nil
}

// SubmitMutations applies one product's mutation batch. The operations are
// independent, so ordering is disabled.
func (r *ProductRepository) SubmitMutations(ctx context.Context, ops []mongo.WriteModel) error {
	if len(ops) == 0 {
		return nil
	}
	if _, err := r.col.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk write: %w", err)
	}
	return nil
}
