package services

import (
	"context"
	"testing"

	"aligned_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMatchRejectsSelfPairing(t *testing.T) {
	// The check precedes any store access; a write attempt would panic here.
	store := &MatchStoreService{}

	match, err := store.CreateMatch(context.Background(), "2026-W01", "ava", "ava", 80)
	assert.ErrorIs(t, err, models.ErrSelfPairing)
	assert.Nil(t, match)
}

func TestSelfPairingLeavesNoGuards(t *testing.T) {
	store := newMemoryMatchStore()

	_, err := store.CreateMatch(context.Background(), "2026-W01", "ava", "ava", 80)
	assert.ErrorIs(t, err, models.ErrSelfPairing)

	// The rejected attempt must not have consumed ava's cycle slot or
	// recorded a pairing.
	match, err := store.CreateMatch(context.Background(), "2026-W01", "ava", "ben", 70)
	require.NoError(t, err)
	require.NotNil(t, match)

	partners, err := store.PastPartners(context.Background(), "ava")
	require.NoError(t, err)
	assert.NotContains(t, partners, "ava")
}
