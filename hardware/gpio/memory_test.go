package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.SetMode(16, Output))
	require.NoError(t, m.Write(16, High))
	assert.Equal(t, Pin{Mode: Output, Level: High, Range: 255}, m.Pin(16))

	require.NoError(t, m.SetPWMRange(26, 100))
	require.NoError(t, m.PWM(26, 255))
	assert.Equal(t, 100, m.Pin(26).Duty, "duty capped at range")
	assert.Equal(t, High, m.Pin(26).Level)

	require.NoError(t, m.PWM(26, 0))
	assert.Equal(t, Low, m.Pin(26).Level)
	assert.Equal(t, 5, m.Writes())

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.ErrorIs(t, m.Write(16, Low), ErrClosed)
	assert.ErrorIs(t, m.Close(), ErrClosed)
}
