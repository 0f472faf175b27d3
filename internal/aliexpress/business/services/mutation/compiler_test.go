package mutation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gopricetracker/internal/aliexpress/business/models"
	"gopricetracker/internal/aliexpress/business/services/canonical"
	"gopricetracker/internal/aliexpress/business/services/reconcile"
)

const todayKey = "2026-09-01"

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newCompiler() *Compiler {
	canon := canonical.NewCanonicalizer(nil)
	return NewCompiler(canon, reconcile.NewEngine(canon), "")
}

func incomingVariant(color, props string, price float64) reconcile.IncomingVariant {
	return reconcile.IncomingVariant{
		Color:      color,
		Properties: props,
		SalePrice:  decimal.NewFromFloat(price),
		Currency:   "KRW",
		Link:       "https://example.com/v",
	}
}

func storedVariant(canon *canonical.Canonicalizer, color, props string, prices map[string]models.PricePoint) models.VariantRecord {
	return models.VariantRecord{
		Color:    canon.Color(color),
		Props:    canon.Properties(props),
		PropsKey: canon.Fingerprint(props),
		Currency: "KRW",
		Prices:   prices,
	}
}

func updateModel(t *testing.T, op mongo.WriteModel) *mongo.UpdateOneModel {
	t.Helper()
	m, ok := op.(*mongo.UpdateOneModel)
	require.True(t, ok, "every compiled operation is an UpdateOne model")
	return m
}

func TestCompileUnknownProductIsSingleSeedingUpsert(t *testing.T) {
	c := newCompiler()

	ops := c.Compile("p1", models.BaseFields{Title: "t"},
		[]reconcile.IncomingVariant{incomingVariant("Red ", `[{"색깔":"빨강"}]`, 10000)},
		nil, false, todayKey, testNow)

	require.Len(t, ops, 1, "new variants on an absent document ride the upsert seed, no push")
	m := updateModel(t, ops[0])
	require.NotNil(t, m.Upsert)
	assert.True(t, *m.Upsert)
	assert.Equal(t, bson.M{"_id": "p1"}, m.Filter)

	update, ok := m.Update.(bson.M)
	require.True(t, ok)
	seed, ok := update["$setOnInsert"].(bson.M)[variantPath].([]models.VariantRecord)
	require.True(t, ok)
	require.Len(t, seed, 1)
	assert.Equal(t, "Red", seed[0].Color)
	assert.Contains(t, seed[0].Props, "색상")
	assert.Equal(t, float64(10000), seed[0].Prices[todayKey].Sale)
	assert.Equal(t, testNow, seed[0].Prices[todayKey].At)
}

func TestCompileSameDayDuplicateEmitsOnlyBaseUpsert(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	c := NewCompiler(canon, reconcile.NewEngine(canon), "")

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			todayKey: {Sale: 10000},
		}),
	}
	ops := c.Compile("p1", models.BaseFields{},
		[]reconcile.IncomingVariant{incomingVariant("Red", `[{"색상":"빨강"}]`, 10000)},
		stored, true, todayKey, testNow)

	require.Len(t, ops, 1)
	m := updateModel(t, ops[0])
	update := m.Update.(bson.M)
	assert.Contains(t, update, "$setOnInsert")
	assert.NotContains(t, update, "$push")
}

func TestCompileLowerPriceEmitsGuardedVariantUpdate(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	c := NewCompiler(canon, reconcile.NewEngine(canon), "")

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			todayKey: {Sale: 12000},
		}),
	}
	ops := c.Compile("p1", models.BaseFields{},
		[]reconcile.IncomingVariant{incomingVariant("Red", `[{"색상":"빨강"}]`, 10000)},
		stored, true, todayKey, testNow)

	require.Len(t, ops, 2)
	m := updateModel(t, ops[1])
	assert.Equal(t, bson.M{"_id": "p1"}, m.Filter)

	set := m.Update.(bson.M)["$set"].(bson.M)
	point, ok := set[variantElem+".pd."+todayKey].(models.PricePoint)
	require.True(t, ok)
	assert.Equal(t, float64(10000), point.Sale)
	assert.Equal(t, canon.Fingerprint(`[{"색상":"빨강"}]`), set[variantElem+".spKey"])

	require.NotNil(t, m.ArrayFilters)
	require.Len(t, m.ArrayFilters.Filters, 1)
	and := m.ArrayFilters.Filters[0].(bson.M)["$and"].(bson.A)
	require.Len(t, and, 2)
	colorOr := and[0].(bson.M)["$or"].(bson.A)
	propsOr := and[1].(bson.M)["$or"].(bson.A)
	assert.Equal(t, bson.M{"e.c": "Red"}, colorOr[0])
	// exact fingerprint, exact canonical encoding, tolerant pattern, raw input
	require.Len(t, propsOr, 4)
	assert.Equal(t, bson.M{"e.sp": `[{"색상":"빨강"}]`}, propsOr[3])
}

func TestCompileFirstTodayAlsoUpdates(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	c := NewCompiler(canon, reconcile.NewEngine(canon), "")

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			"2026-08-31": {Sale: 9000},
		}),
	}
	ops := c.Compile("p1", models.BaseFields{},
		[]reconcile.IncomingVariant{incomingVariant("Red", `[{"색상":"빨강"}]`, 11000)},
		stored, true, todayKey, testNow)

	require.Len(t, ops, 2)
	set := updateModel(t, ops[1]).Update.(bson.M)["$set"].(bson.M)
	assert.Contains(t, set, variantElem+".pd."+todayKey)
}

func TestCompilePushesNewVariantsOnExistingDocument(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	c := NewCompiler(canon, reconcile.NewEngine(canon), "")

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			todayKey: {Sale: 10000},
		}),
	}
	ops := c.Compile("p1", models.BaseFields{},
		[]reconcile.IncomingVariant{
			incomingVariant("Red", `[{"색상":"빨강"}]`, 10000),
			incomingVariant("Blue", `[{"색상":"파랑"}]`, 9000),
		},
		stored, true, todayKey, testNow)

	require.Len(t, ops, 2)
	push := updateModel(t, ops[1]).Update.(bson.M)["$push"].(bson.M)
	records := push[variantPath].(bson.M)["$each"].([]models.VariantRecord)
	require.Len(t, records, 1)
	assert.Equal(t, "Blue", records[0].Color)
}

func TestBaseSetSkipsUnsuppliedFields(t *testing.T) {
	set := baseSet(models.BaseFields{Title: "shoes", Volume: 42})

	assert.Equal(t, bson.M{"tt": "shoes", "vol": int64(42)}, set)
}

func TestCompilerFallbackCurrency(t *testing.T) {
	c := newCompiler()

	v := incomingVariant("Red", `[{"색상":"빨강"}]`, 100)
	v.Currency = ""
	rec := c.variantRecord(v, todayKey, testNow)
	assert.Equal(t, defaultCurrency, rec.Currency)
}
