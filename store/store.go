// Package store persists portfolio snapshots and broker sessions to a local
// SQLite database.
//
// Snapshots are keyed by date and immutable: saving the same date again
// replaces the previous snapshot wholesale. Decimal fields are stored as
// TEXT so figures survive the round trip exactly.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/foliocrawl/folio"
)

// ErrNoSnapshot is returned when no snapshot exists for the requested date.
var ErrNoSnapshot = errors.New("no snapshot for that date")

// Store is a handle on the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Printf("cannot set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		log.Printf("cannot set synchronous mode: %v", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			date TEXT PRIMARY KEY,
			total_value TEXT NOT NULL,
			total_cost_basis TEXT NOT NULL,
			total_unrealized_gain_loss TEXT NOT NULL,
			total_unrealized_gain_loss_percent TEXT NOT NULL,
			day_change_dollars TEXT NOT NULL,
			day_change_percent TEXT NOT NULL,
			brokers_updated TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS holdings_snapshots (
			date TEXT NOT NULL,
			symbol TEXT NOT NULL,
			description TEXT NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			unit_cost TEXT NOT NULL,
			cost_basis TEXT NOT NULL,
			current_value TEXT NOT NULL,
			day_change_dollars TEXT NOT NULL,
			day_change_percent TEXT NOT NULL,
			unrealized_gain_loss TEXT NOT NULL,
			unrealized_gain_loss_percent TEXT NOT NULL,
			portfolio_percentage TEXT,
			brokers TEXT NOT NULL,
			PRIMARY KEY (date, symbol)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			broker TEXT PRIMARY KEY,
			headers TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("cannot create tables: %w", err)
		}
	}
	return nil
}

// SavePortfolio writes one snapshot, replacing any snapshot already stored
// for the same date.
func (s *Store) SavePortfolio(p folio.Portfolio) error {
	brokersUpdated, err := json.Marshal(p.BrokersUpdated)
	if err != nil {
		return fmt.Errorf("cannot encode brokers list: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO portfolio_snapshots
		(date, total_value, total_cost_basis, total_unrealized_gain_loss,
		 total_unrealized_gain_loss_percent, day_change_dollars,
		 day_change_percent, brokers_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Date.String(), p.TotalValue, p.TotalCostBasis,
		p.TotalUnrealizedGainLoss, p.TotalUnrealizedGainLossPercent,
		p.DayChangeDollars, p.DayChangePercent, string(brokersUpdated))
	if err != nil {
		return fmt.Errorf("cannot save portfolio snapshot: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM holdings_snapshots WHERE date = ?`, p.Date.String()); err != nil {
		return fmt.Errorf("cannot clear holdings snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO holdings_snapshots
		(date, symbol, description, quantity, price, unit_cost, cost_basis,
		 current_value, day_change_dollars, day_change_percent,
		 unrealized_gain_loss, unrealized_gain_loss_percent,
		 portfolio_percentage, brokers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cannot prepare holdings insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range p.Holdings {
		brokers, err := json.Marshal(h.Brokers)
		if err != nil {
			return fmt.Errorf("cannot encode broker map for %s: %w", h.Symbol, err)
		}
		var pct any
		if h.PortfolioPercentage != nil {
			pct = *h.PortfolioPercentage
		}
		_, err = stmt.Exec(p.Date.String(), h.Symbol, h.Description,
			h.Quantity, h.Price, h.UnitCost, h.CostBasis, h.CurrentValue,
			h.DayChangeDollars, h.DayChangePercent, h.UnrealizedGainLoss,
			h.UnrealizedGainLossPercent, pct, string(brokers))
		if err != nil {
			return fmt.Errorf("cannot save holding %s: %w", h.Symbol, err)
		}
	}

	return tx.Commit()
}

// Portfolio reads back the snapshot stored for a date. ErrNoSnapshot when
// none exists.
func (s *Store) Portfolio(on folio.Date) (folio.Portfolio, error) {
	p := folio.Portfolio{Date: on}

	var brokersUpdated string
	err := s.db.QueryRow(`SELECT total_value, total_cost_basis,
		total_unrealized_gain_loss, total_unrealized_gain_loss_percent,
		day_change_dollars, day_change_percent, brokers_updated
		FROM portfolio_snapshots WHERE date = ?`, on.String()).
		Scan(&p.TotalValue, &p.TotalCostBasis, &p.TotalUnrealizedGainLoss,
			&p.TotalUnrealizedGainLossPercent, &p.DayChangeDollars,
			&p.DayChangePercent, &brokersUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNoSnapshot
	}
	if err != nil {
		return p, fmt.Errorf("cannot read portfolio snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(brokersUpdated), &p.BrokersUpdated); err != nil {
		return p, fmt.Errorf("cannot decode brokers list: %w", err)
	}

	rows, err := s.db.Query(`SELECT symbol, description, quantity, price,
		unit_cost, cost_basis, current_value, day_change_dollars,
		day_change_percent, unrealized_gain_loss, unrealized_gain_loss_percent,
		portfolio_percentage, brokers
		FROM holdings_snapshots WHERE date = ?
		ORDER BY CAST(current_value AS REAL) DESC`, on.String())
	if err != nil {
		return p, fmt.Errorf("cannot read holdings snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h folio.Holding
		var pct decimal.NullDecimal
		var brokers string
		err := rows.Scan(&h.Symbol, &h.Description, &h.Quantity, &h.Price,
			&h.UnitCost, &h.CostBasis, &h.CurrentValue, &h.DayChangeDollars,
			&h.DayChangePercent, &h.UnrealizedGainLoss,
			&h.UnrealizedGainLossPercent, &pct, &brokers)
		if err != nil {
			return p, fmt.Errorf("cannot read holding: %w", err)
		}
		if pct.Valid {
			h.PortfolioPercentage = &pct.Decimal
		}
		if err := json.Unmarshal([]byte(brokers), &h.Brokers); err != nil {
			return p, fmt.Errorf("cannot decode broker map for %s: %w", h.Symbol, err)
		}
		p.Holdings = append(p.Holdings, h)
	}
	return p, rows.Err()
}

// LatestDate returns the most recent snapshot date. ErrNoSnapshot when the
// store is empty.
func (s *Store) LatestDate() (folio.Date, error) {
	var d string
	err := s.db.QueryRow(`SELECT date FROM portfolio_snapshots ORDER BY date DESC LIMIT 1`).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return folio.Date{}, ErrNoSnapshot
	}
	if err != nil {
		return folio.Date{}, fmt.Errorf("cannot read latest date: %w", err)
	}
	return folio.ParseDate(d)
}

// HistoryEntry is one snapshot's headline figures.
type HistoryEntry struct {
	Date           folio.Date
	TotalValue     decimal.Decimal
	TotalCostBasis decimal.Decimal
}

// History returns the headline figures of every snapshot in date order.
func (s *Store) History() ([]HistoryEntry, error) {
	rows, err := s.db.Query(`SELECT date, total_value, total_cost_basis
		FROM portfolio_snapshots ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("cannot read history: %w", err)
	}
	defer rows.Close()

	var history []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var d string
		if err := rows.Scan(&d, &e.TotalValue, &e.TotalCostBasis); err != nil {
			return nil, fmt.Errorf("cannot read history entry: %w", err)
		}
		if e.Date, err = folio.ParseDate(d); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, rows.Err()
}
