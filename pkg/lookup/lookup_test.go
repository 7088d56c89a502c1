package lookup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStates(t *testing.T) {
	hit := Hit("kyiv_1700000000.json")
	assert.True(t, hit.IsHit())
	assert.Equal(t, "kyiv_1700000000.json", hit.Value)
	assert.Equal(t, "hit", hit.State.String())

	miss := Miss[string]()
	assert.False(t, miss.IsHit())
	assert.False(t, miss.IsFailed())
	assert.Equal(t, "miss", miss.State.String())

	failed := Fail[int](errors.New("connection refused"))
	assert.True(t, failed.IsFailed())
	assert.EqualError(t, failed.Err, "connection refused")
	assert.Equal(t, "failed", failed.State.String())
}
