package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/careplan/internal/plan"
	"github.com/jackzampolin/careplan/internal/vocab"
)

func TestManager(t *testing.T) {
	t.Run("sessions are independent", func(t *testing.T) {
		m := NewManager(context.Background(), nil, nil)
		a := m.Create()
		b := m.Create()
		require.NotEqual(t, a.ID(), b.ID())

		_, err := a.EditField(vocab.FieldSymptoms, "fever")
		require.NoError(t, err)
		assert.Empty(t, b.Snapshot().Symptoms)

		got, err := m.Get(a.ID())
		require.NoError(t, err)
		assert.Same(t, a, got)
		assert.Equal(t, 2, m.Len())
		assert.Len(t, m.List(), 2)
	})

	t.Run("factory is consulted per session", func(t *testing.T) {
		calls := 0
		m := NewManager(context.Background(), func() Config {
			calls++
			return Config{Vocabulary: &vocab.Set{Symptoms: []string{"rash"}}}
		}, nil)

		c := m.Create()
		m.Create()
		assert.Equal(t, 2, calls)
		assert.Equal(t, plan.SourceLocal, c.Mode())

		snap, err := c.EditField(vocab.FieldSymptoms, "ra")
		require.NoError(t, err)
		assert.Equal(t, []string{"rash"}, snap.SymptomSuggestions)
	})

	t.Run("delete", func(t *testing.T) {
		m := NewManager(context.Background(), nil, nil)
		c := m.Create()

		assert.True(t, m.Delete(c.ID()))
		assert.False(t, m.Delete(c.ID()))
		_, err := m.Get(c.ID())
		assert.Error(t, err)
	})
}
