package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title Field[string]   `json:"title,omitzero"`
	Tags  Field[[]string] `json:"tags,omitzero"`
	Order Field[int]      `json:"order,omitzero"`
}

func TestFieldUnmarshal(t *testing.T) {
	t.Run("absent keys stay unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Title.Set)
		assert.False(t, p.Tags.Set)
		assert.False(t, p.Order.Set)
	})

	t.Run("zero values are set", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"title":"","order":0,"tags":[]}`), &p))

		v, ok := p.Title.Get()
		assert.True(t, ok)
		assert.Equal(t, "", v)

		order, ok := p.Order.Get()
		assert.True(t, ok)
		assert.Equal(t, 0, order)
		assert.Equal(t, []string{}, p.Tags.Value)
	})

	t.Run("null is set and flagged", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"tags":null}`), &p))
		assert.True(t, p.Tags.Set)
		assert.True(t, p.Tags.Null)
		assert.Nil(t, p.Tags.Value)
	})

	t.Run("type mismatch is an error", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"order":"first"}`), &p))
	})
}

func TestFieldMarshal(t *testing.T) {
	out, err := json.Marshal(payload{Title: Some("hi"), Order: Some(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"hi","order":0}`, string(out))
}

func TestFieldOr(t *testing.T) {
	var unset Field[string]
	assert.Equal(t, "fallback", unset.Or("fallback"))
	assert.Equal(t, "", Some("").Or("fallback"))
}
