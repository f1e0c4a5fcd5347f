package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/document"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// DocumentCache adapts the generic Cache to the content builder's port.
// Keys are doc:{claimID}:{documentType}; the fingerprint stored inside the
// document decides freshness, so the TTL only bounds staleness of the cache
// itself.
type DocumentCache struct {
	cache  Cache
	ttl    time.Duration
	onHit  func()
	onMiss func()
}

// DocumentCacheOption configures a DocumentCache.
type DocumentCacheOption func(*DocumentCache)

// WithHitMissCounters installs callbacks fired on each cache hit and miss,
// typically bound to Prometheus counters.
func WithHitMissCounters(onHit, onMiss func()) DocumentCacheOption {
	return func(c *DocumentCache) {
		c.onHit = onHit
		c.onMiss = onMiss
	}
}

// NewDocumentCache constructs a DocumentCache.
func NewDocumentCache(cache Cache, ttl time.Duration, opts ...DocumentCacheOption) *DocumentCache {
	c := &DocumentCache{cache: cache, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ document.Cache = (*DocumentCache)(nil)

func documentKey(claimID common.ID, docType claim.DocumentType) string {
	return fmt.Sprintf("doc:%s:%s", claimID, docType)
}

// Get returns the cached document, or nil on a miss.
func (c *DocumentCache) Get(ctx context.Context, claimID common.ID, docType claim.DocumentType) (*claim.GeneratedDocument, error) {
	var doc claim.GeneratedDocument
	err := c.cache.Get(ctx, documentKey(claimID, docType), &doc)
	if err != nil {
		if errors.IsNotFound(err) {
			c.miss()
			return nil, nil
		}
		return nil, err
	}
	c.hit()
	return &doc, nil
}

func (c *DocumentCache) hit() {
	if c.onHit != nil {
		c.onHit()
	}
}

func (c *DocumentCache) miss() {
	if c.onMiss != nil {
		c.onMiss()
	}
}

// Set stores the document under (claimID, docType).
func (c *DocumentCache) Set(ctx context.Context, claimID common.ID, doc claim.GeneratedDocument) error {
	return c.cache.Set(ctx, documentKey(claimID, doc.DocumentType), doc, c.ttl)
}

// Invalidate drops the cached documents for a claim.
func (c *DocumentCache) Invalidate(ctx context.Context, claimID common.ID) error {
	keys := make([]string, 0, 3)
	for _, t := range []claim.DocumentType{claim.DocPoliteChaser, claim.DocLBA, claim.DocFormN1} {
		keys = append(keys, documentKey(claimID, t))
	}
	return c.cache.Delete(ctx, keys...)
}
