package reconcile

import (
	"github.com/shopspring/decimal"

	"gopricetracker/internal/aliexpress/business/models"
	"gopricetracker/internal/aliexpress/business/services/canonical"
)

// IncomingVariant is one raw variant after transport decoding, before
// canonicalization. Properties holds the property set in whatever shape the
// provider sent it (structured list or JSON string encoding).
type IncomingVariant struct {
	Color      string
	Properties any
	SalePrice  decimal.Decimal
	Currency   string
	Link       string
}

// Bucket classifies what a single incoming variant needs.
type Bucket int

const (
	// BucketNew means no stored variant matched under either key.
	BucketNew Bucket = iota
	// BucketFirstToday means the variant matched and has no price recorded today.
	BucketFirstToday
	// BucketLowerToday means today's stored price is strictly higher than the
	// incoming one.
	BucketLowerToday
	// BucketUnchanged means today's record already holds an equal or lower
	// price; the variant is left untouched.
	BucketUnchanged
)

// Decision is the reconciliation outcome for one incoming variant.
type Decision struct {
	Bucket    Bucket
	Variant   IncomingVariant
	StrictKey string
	LooseKey  string
	Matched   *models.VariantRecord
}

// Engine partitions incoming variants against a product's stored variant list.
type Engine struct {
	canon *canonical.Canonicalizer
}

func NewEngine(canon *canonical.Canonicalizer) *Engine {
	return &Engine{canon: canon}
}

// Reconcile classifies every incoming variant for the given day key.
//
// Stored variants are indexed by strict key first and loose key as a fallback.
// The strict index trusts the stored fingerprint when present, so a legacy
// record whose spKey predates a canonicalization rule misses the strict lookup
// and is still caught by the loose key recomputed from its property encoding.
// Loose-key collisions keep the first occurrence; strict-key collisions cannot
// occur within one well-formed product.
func (e *Engine) Reconcile(incoming []IncomingVariant, stored []models.VariantRecord, todayKey string) []Decision {
	strictIdx := make(map[string]*models.VariantRecord, len(stored))
	looseIdx := make(map[string]*models.VariantRecord, len(stored))
	for i := range stored {
		v := &stored[i]
		fp := v.PropsKey
		if fp == "" {
			fp = e.canon.Fingerprint(v.Props)
		}
		sk := e.canon.StrictKeyFromFingerprint(v.Color, fp)
		if _, ok := strictIdx[sk]; !ok {
			strictIdx[sk] = v
		}
		lk := e.canon.LooseKey(v.Color, v.Props)
		if _, ok := looseIdx[lk]; !ok {
			looseIdx[lk] = v
		}
	}

	decisions := make([]Decision, 0, len(incoming))
	for _, in := range incoming {
		d := Decision{
			Variant:   in,
			StrictKey: e.canon.StrictKey(in.Color, in.Properties),
			LooseKey:  e.canon.LooseKey(in.Color, in.Properties),
		}
		match := strictIdx[d.StrictKey]
		if match == nil {
			match = looseIdx[d.LooseKey]
		}
		if match == nil {
			d.Bucket = BucketNew
			decisions = append(decisions, d)
			continue
		}
		d.Matched = match
		today, ok := match.Prices[todayKey]
		switch {
		case !ok:
			d.Bucket = BucketFirstToday
		case decimal.NewFromFloat(today.Sale).GreaterThan(in.SalePrice):
			d.Bucket = BucketLowerToday
		default:
			d.Bucket = BucketUnchanged
		}
		decisions = append(decisions, d)
	}
	return decisions
}
