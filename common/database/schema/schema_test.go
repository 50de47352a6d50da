package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingSkipsAppliedAndSorts(t *testing.T) {
	all := []Migration{{Version: 3}, {Version: 1}, {Version: 2}}
	applied := map[int]time.Time{1: time.Now()}

	pending := Pending(all, applied)
	assert.Equal(t, []int{2, 3}, []int{pending[0].Version, pending[1].Version})
	assert.Empty(t, Pending(all, map[int]time.Time{1: {}, 2: {}, 3: {}}))
}
