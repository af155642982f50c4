package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/memorize/shared/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = helper.GetTypedValueOf[int](func() (any, error) { return "3", nil })
	assert.ErrorIs(t, err, helper.ErrUnexpectedType)

	boom := errors.New("boom")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestLookup(t *testing.T) {
	bindings := map[string]any{"a": 1, "b": "two"}

	v, found, err := helper.Lookup[int](bindings, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, v)

	_, found, err = helper.Lookup[int](bindings, "missing")
	assert.NoError(t, err)
	assert.False(t, found)

	_, found, err = helper.Lookup[int](bindings, "b")
	assert.True(t, found)
	assert.ErrorIs(t, err, helper.ErrUnexpectedType)
	assert.Contains(t, err.Error(), "b:")
}
