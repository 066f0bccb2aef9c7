package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemUnixMilli(t *testing.T) {
	before := time.Now().UnixMilli()
	got := System{}.UnixMilli()
	after := time.Now().UnixMilli()

	require.GreaterOrEqual(t, got, before)
	require.LessOrEqual(t, got, after)
}

func TestFake(t *testing.T) {
	clk := NewFake(1000)
	assert.Equal(t, int64(1000), clk.UnixMilli())

	clk.Advance(500)
	assert.Equal(t, int64(1500), clk.UnixMilli())

	clk.Set(0)
	assert.Equal(t, int64(0), clk.UnixMilli())
}
