package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDrop(claimID string) *ChestDrop {
	return &ChestDrop{
		ClaimID:    claimID,
		RunID:      "run_1",
		PlayerName: "Brakka",
		Floor:      5,
		ChestID:    "chest_boss_5",
		ItemIDs:    []string{"item_12", "item_13"},
		Gold:       80,
	}
}

func TestMemoryLedgerRecordAndLoad(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	require.NoError(t, l.RecordDrop(ctx, sampleDrop("c1")))

	d, ok, err := l.DropByClaim(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run_1", d.RunID)
	assert.Equal(t, []string{"item_12", "item_13"}, d.ItemIDs)
	assert.False(t, d.CreatedAt.IsZero())

	_, ok, err = l.DropByClaim(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLedgerDuplicateDropIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	require.NoError(t, l.RecordDrop(ctx, sampleDrop("c1")))
	second := sampleDrop("c1")
	second.Gold = 999
	require.NoError(t, l.RecordDrop(ctx, second))

	d, _, err := l.DropByClaim(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 80, d.Gold, "first write wins")
}

func TestMemoryLedgerAttestation(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	require.NoError(t, l.RecordDrop(ctx, sampleDrop("c1")))

	ok, err := l.Attested(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.RecordAttestation(ctx, "c1", "sig-abc"))
	ok, err = l.Attested(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.EqualError(t, l.RecordAttestation(ctx, "c1", "sig-def"), "claim c1 already attested")
	assert.EqualError(t, l.RecordAttestation(ctx, "ghost", "sig"), "claim ghost unknown")
}

func TestMemoryLedgerReturnsCopies(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	require.NoError(t, l.RecordDrop(ctx, sampleDrop("c1")))

	d, _, err := l.DropByClaim(ctx, "c1")
	require.NoError(t, err)
	d.Gold = 0

	again, _, err := l.DropByClaim(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 80, again.Gold)
}
