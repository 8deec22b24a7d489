package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// ChestDrop is one recorded boss-chest opening.
type ChestDrop struct {
	ClaimID    string
	RunID      string
	PlayerName string
	Floor      int
	ChestID    string
	ItemIDs    []string
	Gold       int
	CreatedAt  time.Time
}

// LedgerRepo records boss-chest drops and their attestations. The oracle
// bridge is its only writer for attestations.
type LedgerRepo interface {
	RecordDrop(ctx context.Context, drop *ChestDrop) error
	RecordAttestation(ctx context.Context, claimID, attestation string) error
	DropByClaim(ctx context.Context, claimID string) (*ChestDrop, bool, error)
	Attested(ctx context.Context, claimID string) (bool, error)
}

// PostgresLedger persists the ledger in the chest_drops and attestations
// tables.
type PostgresLedger struct {
	db *DB
}

func NewPostgresLedger(db *DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) RecordDrop(ctx context.Context, drop *ChestDrop) error {
	_, err := l.db.Pool.Exec(ctx, `
		INSERT INTO chest_drops (claim_id, run_id, player_name, floor, chest_id, item_ids, gold)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (claim_id) DO NOTHING`,
		drop.ClaimID, drop.RunID, drop.PlayerName, drop.Floor, drop.ChestID, drop.ItemIDs, drop.Gold)
	if err != nil {
		return fmt.Errorf("record drop %s: %w", drop.ClaimID, err)
	}
	return nil
}

func (l *PostgresLedger) RecordAttestation(ctx context.Context, claimID, attestation string) error {
	tag, err := l.db.Pool.Exec(ctx, `
		INSERT INTO attestations (claim_id, attestation)
		VALUES ($1, $2)
		ON CONFLICT (claim_id) DO NOTHING`,
		claimID, attestation)
	if err != nil {
		return fmt.Errorf("record attestation %s: %w", claimID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("claim %s already attested or unknown", claimID)
	}
	return nil
}

func (l *PostgresLedger) DropByClaim(ctx context.Context, claimID string) (*ChestDrop, bool, error) {
	row := l.db.Pool.QueryRow(ctx, `
		SELECT claim_id, run_id, player_name, floor, chest_id, item_ids, gold, created_at
		FROM chest_drops WHERE claim_id = $1`, claimID)
	var d ChestDrop
	err := row.Scan(&d.ClaimID, &d.RunID, &d.PlayerName, &d.Floor, &d.ChestID, &d.ItemIDs, &d.Gold, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load drop %s: %w", claimID, err)
	}
	return &d, true, nil
}

func (l *PostgresLedger) Attested(ctx context.Context, claimID string) (bool, error) {
	var n int
	err := l.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM attestations WHERE claim_id = $1`, claimID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check attestation %s: %w", claimID, err)
	}
	return n > 0, nil
}

// MemoryLedger is the in-process fallback used when the database is
// disabled, and the test double.
type MemoryLedger struct {
	mu       sync.Mutex
	drops    map[string]*ChestDrop
	attested map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		drops:    make(map[string]*ChestDrop),
		attested: make(map[string]string),
	}
}

func (l *MemoryLedger) RecordDrop(ctx context.Context, drop *ChestDrop) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.drops[drop.ClaimID]; ok {
		return nil
	}
	cp := *drop
	cp.CreatedAt = time.Now()
	l.drops[drop.ClaimID] = &cp
	return nil
}

func (l *MemoryLedger) RecordAttestation(ctx context.Context, claimID, attestation string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.drops[claimID]; !ok {
		return fmt.Errorf("claim %s unknown", claimID)
	}
	if _, ok := l.attested[claimID]; ok {
		return fmt.Errorf("claim %s already attested", claimID)
	}
	l.attested[claimID] = attestation
	return nil
}

func (l *MemoryLedger) DropByClaim(ctx context.Context, claimID string) (*ChestDrop, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.drops[claimID]
	if !ok {
		return nil, false, nil
	}
	cp := *d
	return &cp, true, nil
}

func (l *MemoryLedger) Attested(ctx context.Context, claimID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.attested[claimID]
	return ok, nil
}
