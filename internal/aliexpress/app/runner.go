package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gopricetracker/config"
	"gopricetracker/internal/aliexpress/business/dto/responses"
	"gopricetracker/internal/aliexpress/business/models"
	"gopricetracker/internal/aliexpress/business/services/mutation"
	"gopricetracker/internal/aliexpress/business/services/reconcile"
	"gopricetracker/internal/aliexpress/pkg/clients"
	"gopricetracker/internal/aliexpress/storage"
	"gopricetracker/pkg/logger"
	"gopricetracker/pkg/retry"
)

// The affiliate and media hosts repeat in every stored link; stripping them
// keeps the documents small. They are restored by the read side.
const (
	promoBase1 = "https://s.click.aliexpress.com/s/"
	promoBase2 = "http://s.click.aliexpress.com/s/"
	imageBase1 = "https://ae-pic-a1.aliexpress-media.com/kf/"
	imageBase2 = "http://ae-pic-a1.aliexpress-media.com/kf/"
)

const defaultWorkers = 10

// RunReport summarizes one ingest run.
type RunReport struct {
	RunID     string
	Listed    int
	Processed int
	Failed    []string
}

// IngestRunner drives one full ingest: category fan-out, per-product variant
// reconciliation and mutation submission, all under a bounded worker pool.
type IngestRunner struct {
	products   *storage.ProductRepository
	categories *storage.CategoryRepository
	skuClient  *clients.SkuDetailClient
	detail     *clients.ProductDetailClient
	feed       *clients.CategoryFeedClient
	compiler   *mutation.Compiler
	clock      *reconcile.Clock
	cfg        config.IngestConfig
	log        logger.Logger
}

func NewIngestRunner(
	products *storage.ProductRepository,
	categories *storage.CategoryRepository,
	skuClient *clients.SkuDetailClient,
	detail *clients.ProductDetailClient,
	feed *clients.CategoryFeedClient,
	compiler *mutation.Compiler,
	clock *reconcile.Clock,
	cfg config.IngestConfig,
	log logger.Logger,
) *IngestRunner {
	return &IngestRunner{
		products:   products,
		categories: categories,
		skuClient:  skuClient,
		detail:     detail,
		feed:       feed,
		compiler:   compiler,
		clock:      clock,
		cfg:        cfg,
		log:        log,
	}
}

// Run fetches listings for every configured category, de-duplicates them and
// processes each product once. A failing product never aborts the run; its id
// lands in the report for later inspection.
func (r *IngestRunner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString()}
	r.log.Log("run %s: fetching %d categories", report.RunID, len(r.cfg.Categories))

	items := r.fetchListings(ctx)
	unique := dedupe(items)
	report.Listed = len(unique)
	r.log.Log("run %s: %d listings, %d unique products", report.RunID, len(items), len(unique))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, r.workers())
	for _, item := range unique {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(item responses.ListingItem) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := r.processProduct(ctx, item); err != nil {
				r.log.Log("product %s failed: %v", item.ID, err)
				mu.Lock()
				report.Failed = append(report.Failed, item.ID)
				mu.Unlock()
				return
			}
			mu.Lock()
			report.Processed++
			mu.Unlock()
		}(item)
	}
	wg.Wait()

	r.log.Log("run %s done: processed=%d failed=%d", report.RunID, report.Processed, len(report.Failed))
	return report, ctx.Err()
}

func (r *IngestRunner) fetchListings(ctx context.Context) []responses.ListingItem {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []responses.ListingItem
	)
	sem := make(chan struct{}, r.workers())
	for _, categoryID := range r.cfg.Categories {
		wg.Add(1)
		sem <- struct{}{}
		go func(categoryID string) {
			defer wg.Done()
			defer func() { <-sem }()

			listed, err := r.feed.FetchByCategory(ctx, categoryID, r.cfg.MinVolume)
			if err != nil {
				r.log.Log("category %s failed: %v", categoryID, err)
			}
			mu.Lock()
			items = append(items, listed...)
			mu.Unlock()
		}(categoryID)
	}
	wg.Wait()
	return items
}

// processProduct runs the full pipeline for one product: detail fetch, base
// field assembly, stored snapshot read, reconciliation and batch submission.
func (r *IngestRunner) processProduct(ctx context.Context, item responses.ListingItem) error {
	detail, err := retry.Do(ctx, r.retryPolicy(), func() (*responses.SkuDetailResponse, error) {
		return r.skuClient.GetSkuDetail(ctx, item.ID)
	})
	if err != nil {
		return fmt.Errorf("sku detail: %w", err)
	}

	base, err := r.buildBaseFields(ctx, item, &detail.ItemInfo)
	if err != nil {
		return err
	}

	incoming := toIncoming(detail.SkuInfo.TrafficSkuList)

	stored, found, err := r.products.FindStoredVariants(ctx, item.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	ops := r.compiler.Compile(item.ID, base, incoming, stored, found, r.clock.DayKey(now), now)
	return r.products.SubmitMutations(ctx, ops)
}

// buildBaseFields assembles the product-level upsert fields, backfilling
// volume and promotion link from the product detail endpoint when the listing
// came without them.
func (r *IngestRunner) buildBaseFields(ctx context.Context, item responses.ListingItem, info *responses.ItemInfo) (models.BaseFields, error) {
	var base models.BaseFields

	volume := parseNumber(string(item.Volume))
	promo := item.PromotionLink
	if promo == "" {
		promo = item.PL
	}

	if volume <= 0 || promo == "" {
		if fallback := r.fetchDetailFallback(ctx, item.ID); fallback != nil && len(fallback.Items) > 0 {
			first := fallback.Items[0]
			if volume <= 0 {
				volume = parseNumber(string(first.Volume))
			}
			if promo == "" {
				promo = first.Raw.PromotionLink
			}
		}
	}

	if volume > 0 {
		base.Volume = volume
	}
	if promo != "" {
		base.PromoLink = stripPrefix(promo, promoBase1, promoBase2)
	}
	if info.ImageLink != "" {
		base.ImageLink = stripPrefix(info.ImageLink, imageBase1, imageBase2)
	}
	for _, link := range info.AdditionalImages.String {
		base.ExtraImages = append(base.ExtraImages, stripPrefix(link, imageBase1, imageBase2))
	}

	ref1, err := r.categories.FindRef(ctx, info.CategoryIDL1)
	if err != nil {
		return base, err
	}
	ref2, err := r.categories.FindRef(ctx, info.CategoryIDL2)
	if err != nil {
		return base, err
	}
	base.CategoryRef1 = ref1
	base.CategoryRef2 = ref2
	base.CategoryL1 = info.CategoryNameL1
	base.CategoryL2 = info.CategoryNameL2
	base.CategoryL3 = info.CategoryNameL3
	base.CategoryL4 = info.CategoryNameL4

	if strings.TrimSpace(info.Title) != "" {
		base.Title = info.Title
	}
	if score, err := decimal.NewFromString(info.ProductScore); err == nil && !score.IsZero() {
		base.Score = score.InexactFloat64()
	}
	if reviews := parseNumber(info.ReviewNumber); reviews > 0 {
		base.Reviews = reviews
	}
	return base, nil
}

// fetchDetailFallback tolerates failure: a missing backfill is recoverable,
// the run continues with whatever the listing carried.
func (r *IngestRunner) fetchDetailFallback(ctx context.Context, productID string) *responses.ProductDetailResponse {
	fallback, err := retry.Do(ctx, r.retryPolicy(), func() (*responses.ProductDetailResponse, error) {
		return r.detail.GetProductDetails(ctx, []string{productID})
	})
	if err != nil {
		r.log.Log("product %s: detail fallback failed: %v", productID, err)
		return nil
	}
	return fallback
}

func (r *IngestRunner) retryPolicy() retry.Policy {
	retries := r.cfg.Retries
	if retries <= 0 {
		retries = 2
	}
	return retry.Policy{
		Retries: retries,
		Base:    800 * time.Millisecond,
		Max:     10 * time.Second,
	}
}

func (r *IngestRunner) workers() int {
	if r.cfg.Workers > 0 {
		return r.cfg.Workers
	}
	return defaultWorkers
}

func toIncoming(raw []responses.RawSku) []reconcile.IncomingVariant {
	out := make([]reconcile.IncomingVariant, 0, len(raw))
	for _, s := range raw {
		price, err := decimal.NewFromString(strings.TrimSpace(s.SalePriceWithTax))
		if err != nil {
			// malformed prices recover to zero, never abort the product
			price = decimal.Zero
		}
		out = append(out, reconcile.IncomingVariant{
			Color:      s.Color,
			Properties: s.SkuProperties,
			SalePrice:  price,
			Currency:   s.Currency,
			Link:       s.Link,
		})
	}
	return out
}

func dedupe(items []responses.ListingItem) []responses.ListingItem {
	seen := make(map[string]struct{}, len(items))
	unique := make([]responses.ListingItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}

func stripPrefix(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

func parseNumber(s string) int64 {
	n, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n.IntPart()
}
