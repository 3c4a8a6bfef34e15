package local_cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLocalCache(t *testing.T) {
	err := NewLocalCache()
	assert.NoError(t, err)

	success := Cache().Set("latest:farm-1", "reading", 1)
	assert.Equal(t, true, success)

	time.Sleep(50 * time.Millisecond)

	val, success := Cache().Get("latest:farm-1")
	assert.Equal(t, "reading", val)
	assert.Equal(t, true, success)
}
