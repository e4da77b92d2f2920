package dashboard

import (
	"context"
	"strings"
	"time"

	"nftdash/pkg/models"
	"nftdash/pkg/observability"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultPlaceholderImage is shown when a token has no usable image.
const DefaultPlaceholderImage = "assets/placeholder.jpeg"

// Outcome tells whether enrichment succeeded.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// Details is display ready NFT metadata.
type Details struct {
	ImageURL   string `json:"image_url"`
	RarityRank string `json:"rarity_rank"`
}

// Resolution is the result of a details lookup. It never carries an error:
// failures are reported as OutcomeDegraded with placeholder details.
type Resolution struct {
	Details Details `json:"details"`
	Outcome Outcome `json:"outcome"`
	Cached  bool    `json:"cached"`
}

// DetailsSource fetches raw NFT metadata.
type DetailsSource interface {
	FetchNFTDetails(ctx context.Context, tokenID string) (*models.NFTDetails, error)
}

// Resolver looks up NFT details and never fails.
type Resolver struct {
	source      DetailsSource
	cache       *cache.Cache
	placeholder string
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewResolver creates a Resolver. A ttl of zero disables caching.
func NewResolver(source DetailsSource, ttl time.Duration, placeholder string, logger *zap.Logger, metrics *observability.Metrics) *Resolver {
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		source:      source,
		placeholder: placeholder,
		logger:      logger.Named("resolver"),
		metrics:     metrics,
	}
	if ttl > 0 {
		r.cache = cache.New(ttl, 2*ttl)
	}
	return r
}

// Placeholder returns the image used for degraded results.
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Degraded returns the fallback details.
func (r *Resolver) Degraded() Resolution {
	return Resolution{
		Details: Details{ImageURL: r.placeholder, RarityRank: models.NotAvailable},
		Outcome: OutcomeDegraded,
	}
}

// Resolve returns the details for tokenID.
func (r *Resolver) Resolve(ctx context.Context, tokenID string) Resolution {
	key := strings.TrimSpace(tokenID)
	if key == "" || key == models.NotAvailable {
		r.metrics.Enrichment(string(OutcomeDegraded), false)
		return r.Degraded()
	}

	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			r.metrics.Enrichment(string(OutcomeOK), true)
			return Resolution{Details: v.(Details), Outcome: OutcomeOK, Cached: true}
		}
	}

	raw, err := r.source.FetchNFTDetails(ctx, key)
	if err != nil {
		r.logger.Warn("nft details unavailable, using placeholder",
			zap.String("token_id", key),
			zap.Error(err))
		r.metrics.Enrichment(string(OutcomeDegraded), false)
		return r.Degraded()
	}

	details := Details{ImageURL: r.placeholder, RarityRank: models.NotAvailable}
	if raw != nil {
		if img := strings.TrimSpace(raw.ImageURL); img != "" {
			details.ImageURL = img
		}
		if raw.RarityRank.Present() {
			details.RarityRank = string(raw.RarityRank)
		}
	}

	if r.cache != nil {
		r.cache.Set(key, details, cache.DefaultExpiration)
	}
	r.metrics.Enrichment(string(OutcomeOK), false)
	return Resolution{Details: details, Outcome: OutcomeOK}
}
