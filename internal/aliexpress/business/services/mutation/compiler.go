package mutation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gopricetracker/internal/aliexpress/business/models"
	"gopricetracker/internal/aliexpress/business/services/canonical"
	"gopricetracker/internal/aliexpress/business/services/reconcile"
)

const (
	variantPath     = "sku_info.sil"
	variantElem     = "sku_info.sil.$[e]"
	defaultCurrency = "KRW"
)

// Compiler turns a reconciliation outcome into one unordered batch of
// idempotent per-document update operations.
type Compiler struct {
	canon            *canonical.Canonicalizer
	engine           *reconcile.Engine
	fallbackCurrency string
}

func NewCompiler(canon *canonical.Canonicalizer, engine *reconcile.Engine, fallbackCurrency string) *Compiler {
	if fallbackCurrency == "" {
		fallbackCurrency = defaultCurrency
	}
	return &Compiler{canon: canon, engine: engine, fallbackCurrency: fallbackCurrency}
}

// Compile reconciles incoming variants against the stored list and assembles
// the mutation batch for one product:
//
//   - a base-field upsert that seeds the full variant list only on document
//     creation,
//   - one precondition-guarded update per variant needing today's first price
//     or a lower-price correction,
//   - a single append of newly discovered variants, emitted only when the
//     document already exists (otherwise the upsert's seeding covers them).
//
// Every operation carries its own filter and is a no-op when its precondition
// no longer holds, so the batch is safe to apply unordered and to re-apply.
func (c *Compiler) Compile(
	productID string,
	base models.BaseFields,
	incoming []reconcile.IncomingVariant,
	stored []models.VariantRecord,
	found bool,
	todayKey string,
	now time.Time,
) []mongo.WriteModel {
	decisions := c.engine.Reconcile(incoming, stored, todayKey)

	ops := []mongo.WriteModel{c.baseUpsert(productID, base, incoming, todayKey, now)}

	var fresh []reconcile.IncomingVariant
	for _, d := range decisions {
		switch d.Bucket {
		case reconcile.BucketNew:
			fresh = append(fresh, d.Variant)
		case reconcile.BucketFirstToday, reconcile.BucketLowerToday:
			ops = append(ops, c.variantUpdate(productID, d.Variant, todayKey, now))
		}
	}

	if len(fresh) > 0 && found {
		ops = append(ops, c.appendNew(productID, fresh, todayKey, now))
	}
	return ops
}

func (c *Compiler) baseUpsert(productID string, base models.BaseFields, incoming []reconcile.IncomingVariant, todayKey string, now time.Time) mongo.WriteModel {
	seed := make([]models.VariantRecord, 0, len(incoming))
	for _, v := range incoming {
		seed = append(seed, c.variantRecord(v, todayKey, now))
	}
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": productID}).
		SetUpdate(bson.M{
			"$set":         baseSet(base),
			"$setOnInsert": bson.M{variantPath: seed},
		}).
		SetUpsert(true)
}

// baseSet writes only the fields the source actually supplied.
func baseSet(base models.BaseFields) bson.M {
	set := bson.M{}
	if base.Volume != 0 {
		set["vol"] = base.Volume
	}
	if base.PromoLink != "" {
		set["pl"] = base.PromoLink
	}
	if base.ImageLink != "" {
		set["il"] = base.ImageLink
	}
	if len(base.ExtraImages) > 0 {
		set["ail"] = base.ExtraImages
	}
	if !base.CategoryRef1.IsZero() {
		set["cId1"] = base.CategoryRef1
	}
	if !base.CategoryRef2.IsZero() {
		set["cId2"] = base.CategoryRef2
	}
	if base.CategoryL1 != "" {
		set["c1n"] = base.CategoryL1
	}
	if base.CategoryL2 != "" {
		set["c2n"] = base.CategoryL2
	}
	if base.CategoryL3 != "" {
		set["c3n"] = base.CategoryL3
	}
	if base.CategoryL4 != "" {
		set["c4n"] = base.CategoryL4
	}
	if base.Title != "" {
		set["tt"] = base.Title
	}
	if base.Score != 0 {
		set["ps"] = base.Score
	}
	if base.Reviews != 0 {
		set["rn"] = base.Reviews
	}
	return set
}

// variantUpdate records today's price point on the stored variant matching the
// incoming one. The array filter prefers the exact canonical fields and falls
// back to separator-tolerant patterns plus the raw legacy encoding, so records
// written under older canonicalization rules are still located in place.
func (c *Compiler) variantUpdate(productID string, v reconcile.IncomingVariant, todayKey string, now time.Time) mongo.WriteModel {
	color := c.canon.Color(v.Color)
	props := c.canon.Properties(v.Properties)
	propsKey := c.canon.Fingerprint(v.Properties)

	set := bson.M{
		variantElem + ".c":              color,
		variantElem + ".link":           v.Link,
		variantElem + ".sp":             props,
		variantElem + ".spKey":          propsKey,
		variantElem + ".cur":            c.currency(v.Currency),
		variantElem + ".pd." + todayKey: reconcile.BuildPricePoint(v, now),
	}

	colorOr := bson.A{
		bson.M{"e.c": color},
		bson.M{"e.c": bson.M{"$regex": canonical.TolerantPattern(color)}},
	}
	propsOr := bson.A{
		bson.M{"e.spKey": propsKey},
		bson.M{"e.sp": props},
		bson.M{"e.sp": bson.M{"$regex": canonical.TolerantPattern(props)}},
	}
	if raw, ok := canonical.RawString(v.Properties); ok {
		propsOr = append(propsOr, bson.M{"e.sp": raw})
	}

	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": productID}).
		SetUpdate(bson.M{"$set": set}).
		SetArrayFilters(options.ArrayFilters{Filters: bson.A{
			bson.M{"$and": bson.A{
				bson.M{"$or": colorOr},
				bson.M{"$or": propsOr},
			}},
		}})
}

func (c *Compiler) appendNew(productID string, variants []reconcile.IncomingVariant, todayKey string, now time.Time) mongo.WriteModel {
	records := make([]models.VariantRecord, 0, len(variants))
	for _, v := range variants {
		records = append(records, c.variantRecord(v, todayKey, now))
	}
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": productID}).
		SetUpdate(bson.M{"$push": bson.M{variantPath: bson.M{"$each": records}}})
}

func (c *Compiler) variantRecord(v reconcile.IncomingVariant, todayKey string, now time.Time) models.VariantRecord {
	return models.VariantRecord{
		Color:    c.canon.Color(v.Color),
		Props:    c.canon.Properties(v.Properties),
		PropsKey: c.canon.Fingerprint(v.Properties),
		Currency: c.currency(v.Currency),
		Link:     v.Link,
		Prices: map[string]models.PricePoint{
			todayKey: reconcile.BuildPricePoint(v, now),
		},
	}
}

func (c *Compiler) currency(cur string) string {
	if cur == "" {
		return c.fallbackCurrency
	}
	return cur
}
