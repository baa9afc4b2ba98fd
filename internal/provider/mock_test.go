package provider

import (
	"context"
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

func mockNow() time.Time {
	return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
}

func TestMockDeterministic(t *testing.T) {
	ctx := context.Background()
	item := contracts.Item{Name: "AWP | Asiimov (Field-Tested)", Rarity: "Covert"}

	a := NewMock().WithNow(mockNow)
	b := NewMock().WithNow(mockNow)

	qa, err := a.FetchCurrent(ctx, item)
	if err != nil {
		t.Fatalf("FetchCurrent() error = %v", err)
	}
	qb, _ := b.FetchCurrent(ctx, item)

	if qa.PriceUSD != qb.PriceUSD || qa.Volume24h != qb.Volume24h {
		t.Errorf("mock not deterministic: %+v vs %+v", qa, qb)
	}
	if !SanePrice(qa.PriceUSD) {
		t.Errorf("mock price %v outside sane bounds", qa.PriceUSD)
	}
	if qa.Volume24h < 20 {
		t.Errorf("mock volume %d below floor", qa.Volume24h)
	}
}

func TestMockDistinctItemsDiffer(t *testing.T) {
	ctx := context.Background()
	m := NewMock().WithNow(mockNow)

	qa, _ := m.FetchCurrent(ctx, contracts.Item{Name: "AWP | Asiimov (Field-Tested)", Rarity: "Covert"})
	qb, _ := m.FetchCurrent(ctx, contracts.Item{Name: "P2000 | Amber Fade (Factory New)", Rarity: "Industrial"})

	if qa.PriceUSD == qb.PriceUSD {
		t.Errorf("distinct items share price %v", qa.PriceUSD)
	}
}

func TestMockHistoryShape(t *testing.T) {
	ctx := context.Background()
	m := NewMock().WithNow(mockNow)
	item := contracts.Item{Name: "AK-47 | Redline (Field-Tested)", Rarity: "Classified"}

	const days = 14
	points, err := m.FetchHistory(ctx, item, days)
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}

	if len(points) != days {
		t.Fatalf("points = %d, want %d", len(points), days)
	}

	today := contracts.Day(mockNow())
	if !points[len(points)-1].Date.Equal(today) {
		t.Errorf("last point = %v, want %v", points[len(points)-1].Date, today)
	}
	for i, p := range points {
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			t.Errorf("points not ascending at %d", i)
		}
		if !SanePrice(p.PriceUSD) {
			t.Errorf("point %d price %v outside sane bounds", i, p.PriceUSD)
		}
	}

	// Same request twice yields the identical series.
	again, _ := m.FetchHistory(ctx, item, days)
	for i := range points {
		if points[i] != again[i] {
			t.Fatalf("history not deterministic at %d: %+v vs %+v", i, points[i], again[i])
		}
	}
}

func TestMockCurrentMatchesHistoryToday(t *testing.T) {
	ctx := context.Background()
	m := NewMock().WithNow(mockNow)
	item := contracts.Item{Name: "Glock-18 | Fade (Factory New)", Rarity: "Restricted"}

	quote, _ := m.FetchCurrent(ctx, item)
	points, _ := m.FetchHistory(ctx, item, 1)

	if len(points) != 1 || points[0].PriceUSD != quote.PriceUSD {
		t.Errorf("today's history point %+v does not match current quote %+v", points, quote)
	}
}
