package provider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// Mock produces a deterministic synthetic series per item: the same name
// and date always yield the same price and volume, which is what the
// ingestion idempotency tests lean on.
type Mock struct {
	now func() time.Time
}

// NewMock creates the mock provider.
func NewMock() *Mock {
	return &Mock{now: time.Now}
}

// WithNow overrides the clock. Test hook.
func (m *Mock) WithNow(now func() time.Time) *Mock {
	m.now = now
	return m
}

// Source implements Provider.
func (m *Mock) Source() contracts.Source { return contracts.SourceMock }

// FetchCurrent implements Provider.
func (m *Mock) FetchCurrent(_ context.Context, item contracts.Item) (Quote, error) {
	price, volume := m.tick(item, contracts.Day(m.now()))
	return Quote{PriceUSD: price, Volume24h: volume}, nil
}

// FetchHistory implements Provider. Returns exactly days points ending
// today, ascending.
func (m *Mock) FetchHistory(_ context.Context, item contracts.Item, days int) ([]PricePoint, error) {
	if days < 1 {
		days = 1
	}

	today := contracts.Day(m.now())
	points := make([]PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		price, volume := m.tick(item, date)
		points = append(points, PricePoint{Date: date, PriceUSD: price, Volume24h: volume})
	}
	return points, nil
}

var rarityBoost = map[string]float64{
	"Contraband": 1.35,
	"Covert":     1.18,
	"Classified": 1.10,
}

// tick generates the synthetic observation for (item, date). A slow 30-day
// trend cycle plus seeded noise gives the scoring engine something real to
// chew on without an upstream dependency.
func (m *Mock) tick(item contracts.Item, date time.Time) (float64, int64) {
	ordinal := date.Unix() / 86400

	h := fnv.New32a()
	h.Write([]byte(item.Name))
	base := 30 + float64(h.Sum32()%15000)/100

	boost := 1.0
	if b, ok := rarityBoost[item.Rarity]; ok {
		boost = b
	}

	trend := float64(ordinal%30-15) / 250

	rng := rand.New(rand.NewSource(seed(item.Name, ordinal)))
	noise := (rng.Float64() - 0.5) * 0.10

	price := base * boost * (1 + trend + noise)
	if price < 1.5 {
		price = 1.5
	}
	price = math.Round(price*100) / 100

	volume := int64(rng.NormFloat64()*140 + 420)
	if volume < 20 {
		volume = 20
	}
	return price, volume
}

// seed derives a stable RNG seed from the item name and day ordinal.
func seed(name string, ordinal int64) int64 {
	sum := sha256.Sum256([]byte(name + ":" + strconv.FormatInt(ordinal, 10)))
	return int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)
}
