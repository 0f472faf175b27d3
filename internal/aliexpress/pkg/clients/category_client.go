package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/time/rate"

	"gopricetracker/internal/aliexpress/business/dto/responses"
	"gopricetracker/pkg/logger"
)

const (
	categoryQueryMethod = "aliexpress.affiliate.product.query"
	feedPageSize        = 50
	feedMaxPages        = 200
)

// CategoryFeedClient enumerates the product listings of one category.
type CategoryFeedClient struct {
	apiClient
	limiter *rate.Limiter
	log     logger.Logger
}

func NewCategoryFeedClient(host string, signer *Signer, limiter *rate.Limiter, log logger.Logger) *CategoryFeedClient {
	return &CategoryFeedClient{
		apiClient: newAPIClient(host, signer),
		limiter:   limiter,
		log:       log,
	}
}

type categoryFeedEnvelope struct {
	Error  *errorBody `json:"error_response"`
	Result struct {
		Items []responses.ListingItem `json:"items"`
		Total int                     `json:"total_record_count"`
	} `json:"result"`
}

// FetchByCategory pages through one category feed, keeping items at or above
// the volume floor.
func (c *CategoryFeedClient) FetchByCategory(ctx context.Context, categoryID string, minVolume int) ([]responses.ListingItem, error) {
	var items []responses.ListingItem
	for page := 1; page <= feedMaxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return items, err
		}
		body, err := c.get(ctx, categoryQueryMethod, map[string]string{
			"category_ids": categoryID,
			"page_no":      strconv.Itoa(page),
			"page_size":    strconv.Itoa(feedPageSize),
		})
		if err != nil {
			return items, err
		}
		var payload categoryFeedEnvelope
		if err := json.Unmarshal(body, &payload); err != nil {
			return items, fmt.Errorf("decode category %s page %d: %w", categoryID, page, err)
		}
		if payload.Error != nil {
			return items, payload.Error.toError()
		}
		if len(payload.Result.Items) == 0 {
			break
		}
		for _, item := range payload.Result.Items {
			if vol, err := listingVolume(item); err == nil && vol < int64(minVolume) {
				continue
			}
			items = append(items, item)
		}
		if len(items) >= payload.Result.Total && payload.Result.Total > 0 {
			break
		}
	}
	c.log.Log("category %s: %d listings", categoryID, len(items))
	return items, nil
}

func listingVolume(item responses.ListingItem) (int64, error) {
	if item.Volume == "" {
		return 0, nil
	}
	return item.Volume.Int64()
}
