package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/event"
	"skyflipper/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordsPurchases(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	flip := model.AuctionFlip{ItemName: "Hyperion", StartingBid: 100, Target: 200, AuctionID: "abc", Finder: "SNIPER"}
	require.NoError(t, s.Handle(ctx, event.FlipPurchased(event.Text("bought"), flip)))
	require.NoError(t, s.Handle(ctx, event.FlipFailed(event.Text("failed"), flip, "timeout")))

	sum, err := s.Summarize(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Purchases)
	assert.Equal(t, 1, sum.FailedBuys)
}

func TestStoreRecordsSalesAndBazaar(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, event.ItemSold(event.Text("sold"), "Hyperion", 900_000_000, "Buyer")))

	order := model.BazaarOrder{ItemName: "Enchanted Coal", Amount: 64, PricePerUnit: 1000, TotalPrice: 64000, Side: model.SideBuy}
	require.NoError(t, s.Handle(ctx, event.BazaarOrderPlaced(event.Text("placed"), order)))
	require.NoError(t, s.Handle(ctx, event.BazaarOrderFailed(event.Text("failed"), order, "order limit")))

	sum, err := s.Summarize(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sales)
	assert.Equal(t, 900_000_000.0, sum.SalesTotal)
	assert.Equal(t, 1, sum.BazaarPlaced)
	assert.Equal(t, 1, sum.BazaarFailed)
}

func TestSummarizeWindowExcludesOldRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, event.ItemSold(event.Text("sold"), "Hyperion", 100, "")))

	sum, err := s.Summarize(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sum.Sales)
}

func TestStoreIgnoresUnrelatedEvents(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Handle(context.Background(), event.Text("noise")))
}
