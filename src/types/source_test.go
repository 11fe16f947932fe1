package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaPartition(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.Validate())
	require.Len(t, s.Sources, 9)

	fossil := s.InCategory(Fossil)
	low := s.InCategory(LowCarbon)
	assert.Len(t, fossil, 3)
	assert.Len(t, low, 6)
	assert.Equal(t, len(s.Sources), len(fossil)+len(low), "every source belongs to exactly one category")

	seen := map[int]bool{}
	for _, i := range append(fossil, low...) {
		assert.False(t, seen[i], "index %d in both categories", i)
		seen[i] = true
	}
}

func TestDefaultSchemaOrderAndLabels(t *testing.T) {
	s := DefaultSchema()
	var labels []string
	for _, src := range s.Sources {
		labels = append(labels, src.Label)
	}
	assert.Equal(t, []string{
		"coal", "gas", "oil", "nuclear", "hydro", "wind", "solar", "bioenergy",
		"Other renewables excluding bioenergy",
	}, labels)
	assert.Equal(t, 8, s.Index("Other renewables excluding bioenergy - TWh"))
	assert.Equal(t, -1, s.Index("Electricity from tidal - TWh"))
}

func TestValidateRejectsBadSchemas(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := Schema{}
		assert.Error(t, s.Validate())
	})
	t.Run("duplicate column", func(t *testing.T) {
		s := Schema{Sources: []Source{
			{Key: "a", Column: "Electricity from coal - TWh", Category: Fossil},
			{Key: "b", Column: "Electricity from coal - TWh", Category: Fossil},
		}}
		assert.Error(t, s.Validate())
	})
	t.Run("unknown category", func(t *testing.T) {
		s := Schema{Sources: []Source{{Key: "a", Column: "x", Category: "renewable"}}}
		assert.Error(t, s.Validate())
	})
	t.Run("label filled", func(t *testing.T) {
		s := Schema{Sources: []Source{{Key: "wind", Column: " Electricity from wind - TWh ", Category: LowCarbon}}}
		require.NoError(t, s.Validate())
		assert.Equal(t, "wind", s.Sources[0].Label)
	})
}
