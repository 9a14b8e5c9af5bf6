package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

func TestNormaliseAlias(t *testing.T) {
	r := New()
	res := r.Normalise("USA", "")
	require.True(t, res.Resolved())
	assert.Equal(t, "United States of America", res.Canonical)
	assert.Equal(t, catalog.LevelCountry, res.Level)
	assert.Equal(t, 1.0, res.Similarity)
}

func TestNormaliseFuzzyTypo(t *testing.T) {
	r := New()
	res := r.Normalise("Germny", "")
	require.True(t, res.Resolved())
	assert.Equal(t, "Germany", res.Canonical)
	assert.GreaterOrEqual(t, res.Similarity, DefaultSimilarityThreshold)
	assert.Contains(t, res.Suggestions, "Germany")
}

func TestNormaliseUnresolvedReturnsSuggestions(t *testing.T) {
	r := New()
	res := r.Normalise("Zzzqqqxxx Nonexistent Place", "")
	assert.False(t, res.Resolved())
	assert.NotEmpty(t, res.Suggestions)
}

func TestNormaliseIdempotent(t *testing.T) {
	r := New()
	first := r.Normalise("Germny", "")
	require.True(t, first.Resolved())
	second := r.Normalise(first.Canonical, "")
	require.True(t, second.Resolved())
	assert.Equal(t, first.Canonical, second.Canonical)
	assert.Equal(t, 1.0, second.Similarity)
}

func TestResolveEntityUnresolvedCarriesSuggestions(t *testing.T) {
	r := New()
	_, err := r.Resolve("Germny Typo Extra Words Zzz", "")
	// Either resolves via fuzzy backstop or fails with suggestions;
	// both are acceptable, but a failure must carry suggestions.
	if err != nil {
		require.Error(t, err)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.NotEmpty(t, e.Suggestions)
	}
}
