// Package dashboard holds the view state machine of the NFT analytics
// dashboard and the fetchers that shape API data into chart descriptors.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nftdash/pkg/format"
	"nftdash/pkg/models"
	"nftdash/pkg/observability"

	"go.uber.org/zap"
)

// Options configures a Controller.
type Options struct {
	Locale           string
	PlaceholderImage string
	DetailsTTL       time.Duration
	Concurrency      int
	Logger           *zap.Logger
	Metrics          *observability.Metrics
}

// Controller owns the state of every view. All methods are safe for
// concurrent use; fetching methods block until their request completes.
type Controller struct {
	fetchers    *Fetchers
	marketplace *MarketplaceSeriesCache
	msgs        Messages
	logger      *zap.Logger
	metrics     *observability.Metrics

	mu          sync.RWMutex
	active      ViewID
	states      map[ViewID]ViewState
	generations map[ViewID]uint64
	ownedGen    uint64
	tokenID     int
	hasToken    bool
	subscribers []Subscriber
}

// NewController creates a Controller reading from source.
func NewController(source DataSource, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	msgs := MessagesFor(opts.Locale)
	market := NewMarketplaceSeriesCache(msgs)

	c := &Controller{
		fetchers: &Fetchers{
			source:      source,
			resolver:    NewResolver(source, opts.DetailsTTL, opts.PlaceholderImage, logger, opts.Metrics),
			format:      format.NewFormatter(opts.Locale),
			msgs:        msgs,
			concurrency: opts.Concurrency,
			logger:      logger.Named("fetch"),
		},
		marketplace: market,
		msgs:        msgs,
		logger:      logger.Named("controller"),
		metrics:     opts.Metrics,
		states:      make(map[ViewID]ViewState, len(Views)),
		generations: make(map[ViewID]uint64, len(Views)),
	}
	for _, id := range Views {
		c.states[id] = ViewState{View: id, Status: StatusInactive}
	}
	return c
}

// Messages returns the localized catalog in use.
func (c *Controller) Messages() Messages {
	return c.msgs
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (c *Controller) Subscribe() Subscriber {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(Subscriber, 100)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (c *Controller) Unsubscribe(ch Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (c *Controller) notify(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sub := range c.subscribers {
		select {
		case sub <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// Active returns the active view, or "" before the first activation.
func (c *Controller) Active() ViewID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Snapshot returns the current state of a view.
func (c *Controller) Snapshot(id ViewID) ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[id]
}

// Snapshots returns the state of every view in display order.
func (c *Controller) Snapshots() []ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ViewState, 0, len(Views))
	for _, id := range Views {
		out = append(out, c.states[id])
	}
	return out
}

// reset starts a new generation for id and stores st as its state.
func (c *Controller) reset(id ViewID, st ViewState) ViewState {
	c.mu.Lock()
	c.generations[id]++
	st.View = id
	st.Generation = c.generations[id]
	c.states[id] = st
	c.syncMarketplace(id, st)
	c.mu.Unlock()

	c.notify(Event{Type: EventViewUpdated, Data: st})
	return st
}

// begin moves id to Loading with a cleared message and payload.
func (c *Controller) begin(id ViewID, interval models.Interval) uint64 {
	c.mu.RLock()
	owned := c.states[id].Owned
	c.mu.RUnlock()

	st := ViewState{Status: StatusLoading, Interval: interval}
	if id == ViewToken {
		st.Owned = owned
	}
	return c.reset(id, st).Generation
}

// apply stores a completed fetch unless a newer fetch started meanwhile.
func (c *Controller) apply(id ViewID, gen uint64, st ViewState) bool {
	c.mu.Lock()
	if c.generations[id] != gen {
		current := c.generations[id]
		c.mu.Unlock()
		c.logger.Debug("discarding stale result",
			zap.String("view", string(id)),
			zap.Uint64("generation", gen),
			zap.Uint64("current", current))
		c.metrics.Stale(string(id))
		return false
	}
	prev := c.states[id]
	st.View = id
	st.Generation = gen
	st.Interval = prev.Interval
	if st.Owned == nil {
		st.Owned = prev.Owned
	}
	c.states[id] = st
	c.syncMarketplace(id, st)
	c.mu.Unlock()

	c.metrics.FetchCompleted(string(id), string(st.Status))
	c.logger.Debug("view updated",
		zap.String("view", string(id)),
		zap.String("status", string(st.Status)),
		zap.Uint64("generation", gen))
	c.notify(Event{Type: EventViewUpdated, Data: st})
	return true
}

// syncMarketplace keeps the series cache in step with the stored marketplace
// state. Callers hold c.mu.
func (c *Controller) syncMarketplace(id ViewID, st ViewState) {
	if id != ViewMarketplace {
		return
	}
	if st.Status == StatusPopulated && len(st.MarketplacePoints) > 0 {
		c.marketplace.Set(st.MarketplacePoints)
		return
	}
	c.marketplace.Clear()
}

func (c *Controller) fetch(ctx context.Context, id ViewID, interval models.Interval) ViewState {
	gen := c.begin(id, interval)

	var st ViewState
	switch id {
	case ViewTimeBased:
		st = c.fetchers.TimeBased(ctx, interval)
	case ViewBuyersSellers:
		st = c.fetchers.BuyersSellers(ctx, interval)
	case ViewMarketplace:
		st = c.fetchers.Marketplace(ctx, interval)
	case ViewResale:
		st = c.fetchers.Resale(ctx, interval)
	}

	c.apply(id, gen, st)
	return c.Snapshot(id)
}

func (c *Controller) fetchToken(ctx context.Context, tokenID int, interval models.Interval) ViewState {
	gen := c.begin(ViewToken, interval)
	c.apply(ViewToken, gen, c.fetchers.Token(ctx, tokenID, interval))
	return c.Snapshot(ViewToken)
}

// Activate makes id the active view, resets its interval to the first one and
// fetches it. The token view is only cleared; it fetches on lookup.
func (c *Controller) Activate(ctx context.Context, id ViewID) (ViewState, error) {
	if !id.Valid() {
		return ViewState{}, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}

	c.mu.Lock()
	changed := c.active != id
	c.active = id
	if id == ViewToken {
		c.hasToken = false
	}
	c.mu.Unlock()

	if changed {
		c.notify(Event{Type: EventActiveChanged, Data: id})
	}
	c.logger.Info("view activated", zap.String("view", string(id)))

	if id == ViewToken {
		return c.reset(ViewToken, ViewState{Status: StatusInactive}), nil
	}
	return c.fetch(ctx, id, models.IntervalLast7Days), nil
}

// SetInterval re-fetches id for interval. For the token view the interval is
// stored and only fetched when a token has already been looked up.
func (c *Controller) SetInterval(ctx context.Context, id ViewID, interval models.Interval) (ViewState, error) {
	if !id.Valid() {
		return ViewState{}, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}
	if !interval.Valid() {
		return ViewState{}, fmt.Errorf("%w: %d", ErrInvalidInterval, int(interval))
	}

	if id == ViewToken {
		c.mu.Lock()
		tokenID, hasToken := c.tokenID, c.hasToken
		if !hasToken {
			st := c.states[ViewToken]
			st.Interval = interval
			c.states[ViewToken] = st
			c.mu.Unlock()
			c.notify(Event{Type: EventViewUpdated, Data: st})
			return st, nil
		}
		c.mu.Unlock()
		return c.fetchToken(ctx, tokenID, interval), nil
	}
	return c.fetch(ctx, id, interval), nil
}

// Refresh re-fetches the active view with its current interval.
func (c *Controller) Refresh(ctx context.Context) (ViewState, error) {
	c.mu.RLock()
	id := c.active
	interval := c.states[id].Interval
	c.mu.RUnlock()

	if id == "" {
		return ViewState{}, fmt.Errorf("%w: no active view", ErrUnknownView)
	}
	return c.SetInterval(ctx, id, interval)
}

// ToggleMarketplace re-renders the marketplace chart for metric from the
// cached dataset without any request. It fails with ErrCacheUninitialized
// unless the marketplace view is populated.
func (c *Controller) ToggleMarketplace(metric Metric) (ViewState, error) {
	c.mu.Lock()
	st := c.states[ViewMarketplace]
	if st.Status != StatusPopulated {
		c.mu.Unlock()
		return st, ErrCacheUninitialized
	}
	chart, err := c.marketplace.Project(metric)
	if err != nil {
		c.mu.Unlock()
		return st, err
	}
	st.Marketplace = chart
	st.Metric = metric
	c.states[ViewMarketplace] = st
	c.mu.Unlock()

	c.notify(Event{Type: EventViewUpdated, Data: st})
	return st, nil
}

// LookupToken validates raw and loads the details and history of the token.
// Invalid input is reported in the view state and returned as a
// *ValidationError without any request.
func (c *Controller) LookupToken(ctx context.Context, raw string) (ViewState, error) {
	c.mu.RLock()
	interval := c.states[ViewToken].Interval
	owned := c.states[ViewToken].Owned
	c.mu.RUnlock()

	tokenID, err := validateTokenID(raw, c.msgs)
	if err != nil {
		var vErr *ValidationError
		msg := c.msgs.InvalidTokenID
		if errors.As(err, &vErr) {
			msg = vErr.Message
		}
		c.mu.Lock()
		c.hasToken = false
		c.mu.Unlock()
		st := c.reset(ViewToken, ViewState{Status: StatusErrored, Message: msg, Interval: interval, Owned: owned})
		return st, err
	}

	c.mu.Lock()
	c.tokenID, c.hasToken = tokenID, true
	c.mu.Unlock()

	return c.fetchToken(ctx, tokenID, interval), nil
}

// LookupOwned lists the tokens held by address inside the token view.
func (c *Controller) LookupOwned(ctx context.Context, address string) (*OwnedPanel, error) {
	checksummed, err := validateAddress(address, c.msgs)
	if err != nil {
		panel := &OwnedPanel{Address: address, Status: StatusErrored, Message: c.msgs.InvalidAddress}
		c.setOwned(c.nextOwnedGen(), panel)
		return panel, err
	}

	gen := c.nextOwnedGen()
	c.setOwned(gen, &OwnedPanel{Address: checksummed, Status: StatusLoading})
	panel := c.fetchers.Owned(ctx, checksummed)
	c.setOwned(gen, panel)
	return panel, nil
}

func (c *Controller) nextOwnedGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ownedGen++
	return c.ownedGen
}

func (c *Controller) setOwned(gen uint64, panel *OwnedPanel) {
	c.mu.Lock()
	if c.ownedGen != gen {
		c.mu.Unlock()
		c.metrics.Stale("owned")
		return
	}
	st := c.states[ViewToken]
	st.Owned = panel
	c.states[ViewToken] = st
	c.mu.Unlock()

	c.notify(Event{Type: EventViewUpdated, Data: st})
}
