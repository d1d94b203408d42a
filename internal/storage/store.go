package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"skyflipper/internal/event"
)

// Store persists the trading history to a SQLite database so profit can be
// reviewed across restarts.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			auction_id   TEXT NOT NULL,
			item_name    TEXT NOT NULL,
			price        INTEGER NOT NULL,
			target       INTEGER NOT NULL,
			finder       TEXT,
			succeeded    INTEGER NOT NULL,
			fail_reason  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			item_name TEXT NOT NULL,
			price     REAL NOT NULL,
			buyer     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_ts ON sales(timestamp)`,

		`CREATE TABLE IF NOT EXISTS bazaar_orders (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			item_name      TEXT NOT NULL,
			item_tag       TEXT,
			side           TEXT NOT NULL,
			amount         INTEGER NOT NULL,
			price_per_unit REAL NOT NULL,
			total_price    REAL NOT NULL,
			succeeded      INTEGER NOT NULL,
			fail_reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bazaar_ts ON bazaar_orders(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Handle records trading events. Registered on the event listener so every
// outcome lands in the history without the flows knowing about storage.
func (s *Store) Handle(ctx context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt := e.(type) {
	case event.FlipPurchasedEvent:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO purchases (timestamp, auction_id, item_name, price, target, finder, succeeded)
			 VALUES (?, ?, ?, ?, ?, ?, 1)`,
			evt.OccurredAt().Unix(), evt.Flip.AuctionID, evt.Flip.ItemName,
			evt.Flip.StartingBid, evt.Flip.Target, evt.Flip.Finder)
		return err

	case event.FlipFailedEvent:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO purchases (timestamp, auction_id, item_name, price, target, finder, succeeded, fail_reason)
			 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
			evt.OccurredAt().Unix(), evt.Flip.AuctionID, evt.Flip.ItemName,
			evt.Flip.StartingBid, evt.Flip.Target, evt.Flip.Finder, evt.Reason)
		return err

	case event.ItemSoldEvent:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sales (timestamp, item_name, price, buyer) VALUES (?, ?, ?, ?)`,
			evt.OccurredAt().Unix(), evt.ItemName, evt.Price, evt.Buyer)
		return err

	case event.BazaarOrderPlacedEvent:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO bazaar_orders (timestamp, item_name, item_tag, side, amount, price_per_unit, total_price, succeeded)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
			evt.OccurredAt().Unix(), evt.Order.ItemName, evt.Order.ItemTag, evt.Order.Side.String(),
			evt.Order.Amount, evt.Order.PricePerUnit, evt.Order.TotalPrice)
		return err

	case event.BazaarOrderFailedEvent:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO bazaar_orders (timestamp, item_name, item_tag, side, amount, price_per_unit, total_price, succeeded, fail_reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
			evt.OccurredAt().Unix(), evt.Order.ItemName, evt.Order.ItemTag, evt.Order.Side.String(),
			evt.Order.Amount, evt.Order.PricePerUnit, evt.Order.TotalPrice, evt.Reason)
		return err
	}
	return nil
}

// Summary aggregates the recorded history.
type Summary struct {
	Purchases    int
	FailedBuys   int
	Sales        int
	SalesTotal   float64
	BazaarPlaced int
	BazaarFailed int
}

// Summarize reports totals since the given time.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Summary
	ts := since.Unix()

	row := s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN succeeded = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN succeeded = 0 THEN 1 ELSE 0 END), 0)
		 FROM purchases WHERE timestamp >= ?`, ts)
	if err := row.Scan(&out.Purchases, &out.FailedBuys); err != nil {
		return Summary{}, err
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(price), 0) FROM sales WHERE timestamp >= ?`, ts)
	if err := row.Scan(&out.Sales, &out.SalesTotal); err != nil {
		return Summary{}, err
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN succeeded = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN succeeded = 0 THEN 1 ELSE 0 END), 0)
		 FROM bazaar_orders WHERE timestamp >= ?`, ts)
	if err := row.Scan(&out.BazaarPlaced, &out.BazaarFailed); err != nil {
		return Summary{}, err
	}
	return out, nil
}
