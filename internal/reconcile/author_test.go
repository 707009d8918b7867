package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/metadata-service/internal/domain"
)

func TestAuthorReconciler_NoInput(t *testing.T) {
	t.Parallel()
	_, err := NewAuthorReconciler().Reconcile(nil)
	require.ErrorIs(t, err, domain.ErrNoInput)
}

func TestAuthorReconciler_EquivalentVariantsCollapse(t *testing.T) {
	t.Parallel()
	got, err := NewAuthorReconciler().Reconcile([]Input[[]string]{
		{Value: []string{"J.R.R. Tolkien"}, Source: src("openlibrary", 0.9)},
		{Value: []string{"Tolkien, J.R.R."}, Source: src("googlebooks", 0.8)},
	})
	require.NoError(t, err)

	// One equivalence class, represented by the uninverted display form.
	assert.Equal(t, []string{"J.R.R. Tolkien"}, got.Value)
	assert.Empty(t, got.Conflicts)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
	assert.Contains(t, got.Reasoning, "into 1 authors (1 corroborated)")
}

func TestAuthorReconciler_UnionKeepsUncorroborated(t *testing.T) {
	t.Parallel()
	got, err := NewAuthorReconciler().Reconcile([]Input[[]string]{
		{Value: []string{"Frank Herbert"}, Source: src("openlibrary", 0.9)},
		{Value: []string{"Frank Herbert", "Kevin J. Anderson"}, Source: src("googlebooks", 0.8)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Frank Herbert", "Kevin J. Anderson"}, got.Value)

	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, domain.FieldAuthors, got.Conflicts[0].Field)
	assert.Equal(t, "kept the union of all equivalent author names", got.Conflicts[0].Resolution)

	// Half the authors are corroborated, so the shared-fraction factor is 0.75.
	assert.InDelta(t, 0.85*0.75, got.Confidence, 1e-9)
}

func TestAuthorReconciler_OrderFollowsReliability(t *testing.T) {
	t.Parallel()
	got, err := NewAuthorReconciler().Reconcile([]Input[[]string]{
		{Value: []string{"Terry Pratchett", "Neil Gaiman"}, Source: src("wikidata", 0.7)},
		{Value: []string{"Neil Gaiman", "Terry Pratchett"}, Source: src("openlibrary", 0.9)},
	})
	require.NoError(t, err)

	// The most reliable source's listing order wins.
	assert.Equal(t, []string{"Neil Gaiman", "Terry Pratchett"}, got.Value)
	assert.Empty(t, got.Conflicts)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
}

func TestAuthorReconciler_SingleSource(t *testing.T) {
	t.Parallel()
	got, err := NewAuthorReconciler().Reconcile([]Input[[]string]{
		{Value: []string{"Ursula K. Le Guin"}, Source: src("openlibrary", 0.9)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ursula K. Le Guin"}, got.Value)
	assert.Empty(t, got.Conflicts)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
	assert.Contains(t, got.Reasoning, "single source openlibrary")
}
