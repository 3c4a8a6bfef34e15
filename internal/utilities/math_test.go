package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 22.46, RoundTo(22.456, 2))
	assert.Equal(t, 22.45, RoundTo(22.454, 2))
	assert.Equal(t, -1.5, RoundTo(-1.499, 1))
	assert.Equal(t, 3.0, RoundTo(3, 2))
}

func TestRoundToInt(t *testing.T) {
	assert.Equal(t, 701, RoundToInt(700.6))
	assert.Equal(t, 700, RoundToInt(700.4))
	assert.Equal(t, -2, RoundToInt(-1.5))
}
