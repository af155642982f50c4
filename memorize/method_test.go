package memorize_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/on-the-ground/memorize/memorize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repo struct {
	name  string
	calls int
}

func (r *repo) Describe() string {
	r.calls++
	return strings.ToUpper(r.name)
}

func (r *repo) Find(id int) (string, error) {
	r.calls++
	if id < 0 {
		return "", errors.New("negative id")
	}
	return r.name + "/" + string(rune('a'+id)), nil
}

func (r *repo) Scale(a, b int) int {
	r.calls++
	return (a + b) * len(r.name)
}

func TestGetter_PerReceiver(t *testing.T) {
	describe := memorize.Getter((*repo).Describe)

	a, b := &repo{name: "a"}, &repo{name: "b"}
	assert.Equal(t, "A", describe(a))
	assert.Equal(t, "A", describe(a))
	assert.Equal(t, "B", describe(b))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMethod_ReceiverIsPartOfTheKey(t *testing.T) {
	find := memorize.MethodI1O2((*repo).Find)

	a, b := &repo{name: "a"}, &repo{name: "b"}
	v, err := find(a, 0)
	require.NoError(t, err)
	assert.Equal(t, "a/a", v)

	find(a, 0)
	find(b, 0)
	find(a, 1)
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMethod_ErrorsAreNotCached(t *testing.T) {
	find := memorize.MethodI1O2((*repo).Find)

	r := &repo{name: "r"}
	_, err := find(r, -1)
	assert.Error(t, err)
	_, err = find(r, -1)
	assert.Error(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestMethod_TwoArguments(t *testing.T) {
	scale := memorize.MethodI2O1((*repo).Scale)

	r := &repo{name: "abc"}
	assert.Equal(t, 9, scale(r, 1, 2))
	assert.Equal(t, 9, scale(r, 1, 2))
	assert.Equal(t, 9, scale(r, 2, 1))
	assert.Equal(t, 2, r.calls)
}

type point struct{ x, y int }

func TestMethod_ValueReceivers(t *testing.T) {
	calls := 0
	norm := memorize.Getter(func(p point) int {
		calls++
		return p.x*p.x + p.y*p.y
	})

	assert.Equal(t, 25, norm(point{3, 4}))
	assert.Equal(t, 25, norm(point{3, 4}))
	assert.Equal(t, 1, calls)
}
