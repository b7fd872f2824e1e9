package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexlabs/docverify/internal/plausibility"
)

func sp(s string) *string { return &s }

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func sampleVerdict(valid bool) *plausibility.Verdict {
	v := &plausibility.Verdict{
		IsValid:           valid,
		InvoiceExpiryDate: sp("2025-07-31"),
		Checks: []plausibility.CheckResult{
			{CheckName: "Parties Match", Passed: valid, Details: "All parties must match across documents"},
		},
	}
	if valid {
		v.SealHash = sp("ab12")
	}
	return v
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "PLANT-001", sampleVerdict(true))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "PLANT-001", got.PlantID)
	assert.True(t, got.IsValid)
	require.NotNil(t, got.SealHash)
	assert.Equal(t, "ab12", *got.SealHash)
	require.NotNil(t, got.Verdict)
	require.Len(t, got.Verdict.Checks, 1)
	assert.Equal(t, "Parties Match", got.Verdict.Checks[0].CheckName)
}

func TestGetUnknownID(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Save(ctx, "PLANT-001", sampleVerdict(i%2 == 0))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSaveFailedVerdictHasNullSeal(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "PLANT-002", sampleVerdict(false))
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	assert.Nil(t, got.SealHash)
}
