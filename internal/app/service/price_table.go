package service

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/domain/entity"
	"holdings_checker/pkg/metrics"
)

// priceTableImpl implements port.PriceTable. Entries live in a go-cache store
// keyed by the provider's token id; a separate symbol index resolves the
// case-insensitive symbol joins. Later pages overwrite same-id entries, so
// re-applying a page is a no-op.
type priceTableImpl struct {
	logger  *zap.Logger
	entries *cache.Cache // provider id -> entity.MarketTokenEntry

	mu          sync.RWMutex
	symbolIndex map[string]string // upper-case symbol -> provider id
	ready       bool
}

// NewPriceTable creates an empty price table. ttl <= 0 means entries never expire.
func NewPriceTable(ttl time.Duration, logger *zap.Logger) port.PriceTable {
	expiry := cache.NoExpiration
	if ttl > 0 {
		expiry = ttl
	}
	return &priceTableImpl{
		logger:      logger.Named("PriceTable"),
		entries:     cache.New(expiry, 10*time.Minute),
		symbolIndex: make(map[string]string),
	}
}

// UpsertPage implements port.PriceTable.
func (t *priceTableImpl) UpsertPage(entries []entity.MarketTokenEntry) {
	t.mu.Lock()
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		e.Symbol = strings.ToUpper(e.Symbol)
		t.entries.Set(e.ID, e, cache.DefaultExpiration)
		// First id to claim a symbol keeps it. Two different tokens sharing a
		// ticker is a known ambiguity of symbol joins; we do not disambiguate
		// by contract address.
		if _, taken := t.symbolIndex[e.Symbol]; !taken {
			t.symbolIndex[e.Symbol] = e.ID
		}
	}
	t.mu.Unlock()

	metrics.PriceTableSize.Set(float64(t.entries.ItemCount()))
	t.logger.Debug("Upserted market page into price table",
		zap.Int("pageEntries", len(entries)),
		zap.Int("tableSize", t.entries.ItemCount()))
}

// LookupBySymbol implements port.PriceTable.
func (t *priceTableImpl) LookupBySymbol(symbol string) (entity.MarketTokenEntry, bool) {
	if symbol == "" {
		return entity.MarketTokenEntry{}, false
	}

	t.mu.RLock()
	id, ok := t.symbolIndex[strings.ToUpper(symbol)]
	t.mu.RUnlock()
	if !ok {
		return entity.MarketTokenEntry{}, false
	}

	raw, found := t.entries.Get(id)
	if !found {
		// Entry expired out from under its index mapping.
		return entity.MarketTokenEntry{}, false
	}
	entry, ok := raw.(entity.MarketTokenEntry)
	return entry, ok
}

// MarkReady implements port.PriceTable.
func (t *priceTableImpl) MarkReady() {
	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()
}

// Ready implements port.PriceTable.
func (t *priceTableImpl) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

// Len implements port.PriceTable.
func (t *priceTableImpl) Len() int {
	return t.entries.ItemCount()
}
