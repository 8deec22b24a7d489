// Package oracle is the bridge between boss-chest drops and the external
// attestation service. The core only mints claim ids and records them on
// the ledger; what an attestation means is the external service's
// business.
package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/config"
	"github.com/gloomspire/server/internal/persist"
)

// Bridge mints claims for boss-chest drops and accepts attestations for
// them. One boss chest per run per floor may claim.
type Bridge struct {
	ledger  persist.LedgerRepo
	timeout config.OracleConfig
	log     *zap.Logger

	mu      sync.Mutex
	claimed map[string]bool // runID:floor -> claim minted
}

// NewBridge wires the bridge onto a ledger.
func NewBridge(ledger persist.LedgerRepo, cfg config.OracleConfig, log *zap.Logger) *Bridge {
	return &Bridge{
		ledger:  ledger,
		timeout: cfg,
		log:     log,
		claimed: make(map[string]bool),
	}
}

// RecordChestOpen registers a boss-chest drop and returns its claim id.
// A second boss chest on the same floor of the same run gets no claim.
func (b *Bridge) RecordChestOpen(ctx context.Context, runID, playerName string, floor int, chestID string, itemIDs []string, gold int) (string, error) {
	key := fmt.Sprintf("%s:%d", runID, floor)
	b.mu.Lock()
	if b.claimed[key] {
		b.mu.Unlock()
		return "", fmt.Errorf("floor %d already claimed", floor)
	}
	b.claimed[key] = true
	b.mu.Unlock()

	claimID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, b.timeout.ClaimTimeout)
	defer cancel()
	err := b.ledger.RecordDrop(ctx, &persist.ChestDrop{
		ClaimID:    claimID,
		RunID:      runID,
		PlayerName: playerName,
		Floor:      floor,
		ChestID:    chestID,
		ItemIDs:    itemIDs,
		Gold:       gold,
	})
	if err != nil {
		b.mu.Lock()
		delete(b.claimed, key)
		b.mu.Unlock()
		return "", err
	}
	b.log.Info("chest claim minted",
		zap.String("claim", claimID),
		zap.String("run", runID),
		zap.Int("floor", floor))
	return claimID, nil
}

// Attest records an attestation against a minted claim. Unknown claims
// and double attestations are rejected.
func (b *Bridge) Attest(ctx context.Context, claimID, attestation string) error {
	if claimID == "" || attestation == "" {
		return fmt.Errorf("claim id and attestation are required")
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout.ClaimTimeout)
	defer cancel()
	_, ok, err := b.ledger.DropByClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown claim %s", claimID)
	}
	if err := b.ledger.RecordAttestation(ctx, claimID, attestation); err != nil {
		return err
	}
	b.log.Info("claim attested", zap.String("claim", claimID))
	return nil
}

// Attested reports whether the claim has an attestation on the ledger.
func (b *Bridge) Attested(ctx context.Context, claimID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout.ClaimTimeout)
	defer cancel()
	return b.ledger.Attested(ctx, claimID)
}
