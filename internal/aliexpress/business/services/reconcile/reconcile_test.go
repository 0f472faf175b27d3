package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopricetracker/internal/aliexpress/business/models"
	"gopricetracker/internal/aliexpress/business/services/canonical"
)

const today = "2026-09-01"

func newEngine() *Engine {
	return NewEngine(canonical.NewCanonicalizer(nil))
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

func incoming(color, props string, price float64) IncomingVariant {
	return IncomingVariant{
		Color:      color,
		Properties: props,
		SalePrice:  decimal.NewFromFloat(price),
		Currency:   "KRW",
	}
}

func TestReconcileNewVariantAgainstEmptyStore(t *testing.T) {
	e := newEngine()

	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red ", `[{"색깔":"빨강"}]`, 10000)},
		nil,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketNew, decisions[0].Bucket)
	assert.Nil(t, decisions[0].Matched)
}

func TestReconcileFirstToday(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			"2026-08-31": {Sale: 12000},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 10000)},
		stored,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketFirstToday, decisions[0].Bucket)
	require.NotNil(t, decisions[0].Matched)
}

func TestReconcileLowerToday(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			today: {Sale: 12000},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 10000)},
		stored,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketLowerToday, decisions[0].Bucket)
}

func TestReconcileEqualPriceIsNoOp(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			today: {Sale: 10000},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 10000)},
		stored,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketUnchanged, decisions[0].Bucket)
}

func TestReconcileHigherPriceIsNoOp(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			today: {Sale: 10000},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 11000)},
		stored,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketUnchanged, decisions[0].Bucket)
}

// A legacy record whose stored fingerprint predates a canonicalization rule
// must still match through the loose key, never land in the new bucket.
func TestReconcileLooseKeyFallback(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	legacy := storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
		today: {Sale: 12000},
	})
	legacy.PropsKey = "빨 강" // stored before whitespace stripping

	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 10000)},
		[]models.VariantRecord{legacy},
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketLowerToday, decisions[0].Bucket)
	require.NotNil(t, decisions[0].Matched)
}

// Lowest price wins across a same-day sequence: 100 -> 80 -> 90 ends at 80.
func TestReconcileMonotonicSameDaySequence(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	props := `[{"색상":"빨강"}]`
	stored := []models.VariantRecord{
		storedVariant(canon, "Red", props, map[string]models.PricePoint{
			today: {Sale: 100},
		}),
	}

	first := e.Reconcile([]IncomingVariant{incoming("Red", props, 80)}, stored, today)
	require.Equal(t, BucketLowerToday, first[0].Bucket)
	stored[0].Prices[today] = models.PricePoint{Sale: 80}

	second := e.Reconcile([]IncomingVariant{incoming("Red", props, 90)}, stored, today)
	require.Equal(t, BucketUnchanged, second[0].Bucket)
	assert.Equal(t, float64(80), stored[0].Prices[today].Sale)
}

// Yesterday's point never blocks today's, even at a higher price.
func TestReconcileDayRollover(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			"2026-08-31": {Sale: 50},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{incoming("Red", `[{"색상":"빨강"}]`, 100)},
		stored,
		today,
	)

	require.Len(t, decisions, 1)
	assert.Equal(t, BucketFirstToday, decisions[0].Bucket)
}

func TestReconcileMixedBatch(t *testing.T) {
	canon := canonical.NewCanonicalizer(nil)
	e := NewEngine(canon)

	stored := []models.VariantRecord{
		storedVariant(canon, "Red", `[{"색상":"빨강"}]`, map[string]models.PricePoint{
			today: {Sale: 12000},
		}),
		storedVariant(canon, "Blue", `[{"색상":"파랑"}]`, map[string]models.PricePoint{
			"2026-08-31": {Sale: 9000},
		}),
	}
	decisions := e.Reconcile(
		[]IncomingVariant{
			incoming("Red", `[{"색상":"빨강"}]`, 10000),
			incoming("Blue", `[{"색상":"파랑"}]`, 9000),
			incoming("Green", `[{"색상":"초록"}]`, 15000),
		},
		stored,
		today,
	)

	require.Len(t, decisions, 3)
	assert.Equal(t, BucketLowerToday, decisions[0].Bucket)
	assert.Equal(t, BucketFirstToday, decisions[1].Bucket)
	assert.Equal(t, BucketNew, decisions[2].Bucket)
}

func TestBuildPricePoint(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	pp := BuildPricePoint(incoming("Red", "", 10000), now)

	assert.Equal(t, float64(10000), pp.Sale)
	assert.Equal(t, now, pp.At)
}
