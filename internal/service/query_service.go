package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
)

// Cache keys for the derived views. Per-entity keys live on the models.
const (
	cacheKeyRequestCurrent = "request-current"
	cacheKeyPushCurrent    = "push-current"
	cacheKeyPushOpen       = "push-open"
)

const defaultListLimit = 25

// RequestStore is the request persistence surface the query and
// workflow services depend on.
type RequestStore interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	Current(ctx context.Context) ([]models.Request, error)
	ByPush(ctx context.Context, pushID string) ([]models.Request, error)
	ForOwner(ctx context.Context, owner string, limit int) ([]models.Request, error)
	Update(ctx context.Context, request *models.Request) error
}

// PushStore is the push persistence surface.
type PushStore interface {
	Create(ctx context.Context, push *models.Push) error
	GetByID(ctx context.Context, id string) (*models.Push, error)
	Current(ctx context.Context) (*models.Push, error)
	Open(ctx context.Context, limit int) ([]models.Push, error)
	ForOwner(ctx context.Context, owner string, limit int) ([]models.Push, error)
	LiveBetween(ctx context.Context, from, to time.Time) ([]models.Push, error)
	Update(ctx context.Context, push *models.Push) error
	UpdateWithRequests(ctx context.Context, push *models.Push, requests []*models.Request) error
}

// currentPushEnvelope wraps the cached current push so that "cached,
// and there is none" is distinguishable from a cache miss.
type currentPushEnvelope struct {
	Push *models.Push `json:"push"`
}

// QueryService serves the read-side views of the workflow with
// read-through caching. Writers call the Bust helpers after every
// transition; the TTLs only bound staleness if a bust is lost.
type QueryService struct {
	requests RequestStore
	pushes   PushStore
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	openTTL  time.Duration
}

// NewQueryService constructs a query service.
func NewQueryService(requests RequestStore, pushes PushStore, cache *CacheService, metrics *MetricsService, openTTL time.Duration, logger *zap.Logger) *QueryService {
	if openTTL <= 0 {
		openTTL = time.Hour
	}
	return &QueryService{
		requests: requests,
		pushes:   pushes,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		openTTL:  openTTL,
	}
}

// CurrentRequests returns every request awaiting a push, urgent first,
// soonest due first, passing-tests first, oldest modification first.
func (s *QueryService) CurrentRequests(ctx context.Context) ([]models.Request, error) {
	var cached []models.Request
	if hit, err := s.cache.Get(ctx, cacheKeyRequestCurrent, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	requests, err := s.requests.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("requests_current", time.Since(start))

	if requests == nil {
		requests = []models.Request{}
	}
	_ = s.cache.Set(ctx, cacheKeyRequestCurrent, requests, 0)
	return requests, nil
}

// PushRequests returns the requests belonging to a push, optionally
// narrowed to the given states. The unfiltered set is what gets
// cached; filters apply in memory afterwards.
func (s *QueryService) PushRequests(ctx context.Context, push *models.Push, states ...models.RequestState) ([]models.Request, error) {
	key := push.RequestsCacheKey()

	var requests []models.Request
	hit, err := s.cache.Get(ctx, key, &requests)
	if err != nil || !hit {
		start := time.Now()
		requests, err = s.requests.ByPush(ctx, push.ID)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveDBQuery("requests_by_push", time.Since(start))
		if requests == nil {
			requests = []models.Request{}
		}
		_ = s.cache.Set(ctx, key, requests, 0)
	}

	if len(states) == 0 {
		return requests, nil
	}
	filtered := make([]models.Request, 0, len(requests))
	for _, request := range requests {
		if request.StateIn(states...) {
			filtered = append(filtered, request)
		}
	}
	return filtered, nil
}

// PendingRequests returns the requests a push could still accept: the
// current set, optionally limited to those due no later than notAfter.
func (s *QueryService) PendingRequests(ctx context.Context, notAfter *time.Time) ([]models.Request, error) {
	requests, err := s.CurrentRequests(ctx)
	if err != nil {
		return nil, err
	}
	if notAfter == nil {
		return requests, nil
	}
	pending := make([]models.Request, 0, len(requests))
	for _, request := range requests {
		if !request.TargetDate.After(*notAfter) {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

// CurrentPush returns the oldest push still accepting or on stage, or
// nil when none exists. The cache stores an envelope so that an empty
// result is itself cacheable.
func (s *QueryService) CurrentPush(ctx context.Context) (*models.Push, error) {
	var envelope currentPushEnvelope
	if hit, err := s.cache.Get(ctx, cacheKeyPushCurrent, &envelope); err == nil && hit {
		return envelope.Push, nil
	}

	start := time.Now()
	push, err := s.pushes.Current(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load current push: %w", err)
	}
	s.metrics.ObserveDBQuery("pushes_current", time.Since(start))

	_ = s.cache.Set(ctx, cacheKeyPushCurrent, currentPushEnvelope{Push: push}, 0)
	return push, nil
}

// OpenPushes returns the most recently created open or live pushes,
// newest activity first.
func (s *QueryService) OpenPushes(ctx context.Context) ([]models.Push, error) {
	var cached []models.Push
	if hit, err := s.cache.Get(ctx, cacheKeyPushOpen, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	pushes, err := s.pushes.Open(ctx, defaultListLimit)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("pushes_open", time.Since(start))

	if pushes == nil {
		pushes = []models.Push{}
	}
	sortPushesByPTimeDesc(pushes)
	_ = s.cache.Set(ctx, cacheKeyPushOpen, pushes, s.openTTL)
	return pushes, nil
}

// PushesForUser returns a user's open and live pushes, newest activity
// first. Per-user views are cheap and uncached.
func (s *QueryService) PushesForUser(ctx context.Context, email string) ([]models.Push, error) {
	pushes, err := s.pushes.ForOwner(ctx, email, defaultListLimit)
	if err != nil {
		return nil, err
	}
	sortPushesByPTimeDesc(pushes)
	return pushes, nil
}

// RequestsForUser returns a user's recent requests in every state but
// abandoned, most imminent first.
func (s *QueryService) RequestsForUser(ctx context.Context, email string) ([]models.Request, error) {
	requests, err := s.requests.ForOwner(ctx, email, defaultListLimit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		if !requests[i].TargetDate.Equal(requests[j].TargetDate) {
			return requests[i].TargetDate.After(requests[j].TargetDate)
		}
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

// PushesForWeekOf returns the pushes that went live in the seven days
// starting at from, earliest first.
func (s *QueryService) PushesForWeekOf(ctx context.Context, from time.Time) ([]models.Push, error) {
	return s.pushes.LiveBetween(ctx, from, from.AddDate(0, 0, 7))
}

// BustRequestCaches invalidates the current-requests view.
func (s *QueryService) BustRequestCaches(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, cacheKeyRequestCurrent)
}

// BustPushCaches invalidates the global push views.
func (s *QueryService) BustPushCaches(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, cacheKeyPushCurrent, cacheKeyPushOpen)
}

// BustPushRequestsCache invalidates a push's cached request set.
func (s *QueryService) BustPushRequestsCache(ctx context.Context, push *models.Push) {
	_ = s.cache.Invalidate(ctx, push.RequestsCacheKey())
}

func sortPushesByPTimeDesc(pushes []models.Push) {
	sort.SliceStable(pushes, func(i, j int) bool {
		return pushes[i].PTime().After(pushes[j].PTime())
	})
}
