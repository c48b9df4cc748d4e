package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"90s","b":1000000000}`), &v))
	assert.Equal(t, 90*time.Second, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{2 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(b))
}

func TestDateAndSameDate(t *testing.T) {
	a := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Date(a))
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}
