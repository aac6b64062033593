package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowDefaults(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	got := c.Show("Sale parked")

	assert.True(t, strings.HasPrefix(got.ID, "t_"))
	assert.Equal(t, ToneNeutral, got.Tone)
	assert.Equal(t, int64(2200), got.TimeoutMs)
	assert.Equal(t, []Toast{got}, c.List())
}

func TestShowOptions(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	got := c.Show("Paid", WithTone(ToneSuccess), WithTimeout(5*time.Second))
	assert.Equal(t, ToneSuccess, got.Tone)
	assert.Equal(t, int64(5000), got.TimeoutMs)

	assert.Equal(t, ToneDanger, c.Danger("Nope").Tone)
	assert.Len(t, c.List(), 2)
}

func TestListKeepsOrder(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	first := c.Show("one")
	second := c.Success("two")

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestDismiss(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	a := c.Show("a")
	b := c.Show("b")
	c.Dismiss(a.ID)
	c.Dismiss("t_missing")

	assert.Equal(t, []Toast{b}, c.List())
}

func TestToastsExpire(t *testing.T) {
	c := NewCenter()
	defer c.Close()

	c.Show("short", WithTimeout(10*time.Millisecond))
	keep := c.Show("long", WithTimeout(time.Hour))

	assert.Eventually(t, func() bool {
		list := c.List()
		return len(list) == 1 && list[0].ID == keep.ID
	}, time.Second, 5*time.Millisecond)
}
