package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestampMarshalsToISOMillis(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	require.Equal(t, `"2024-01-01T00:00:00.000Z"`, string(data))
}

func TestTimestampUnmarshalBothShapes(t *testing.T) {
	native := []byte(`{"seconds":1704067200,"nanoseconds":0}`)
	serialized := []byte(`"2024-01-01T00:00:00.000Z"`)

	var fromNative, fromString Timestamp
	require.NoError(t, json.Unmarshal(native, &fromNative))
	require.NoError(t, json.Unmarshal(serialized, &fromString))

	require.Equal(t, fromNative.Time(), fromString.Time())
	require.Equal(t, fromNative.FormatDate(), fromString.FormatDate())
	require.Equal(t, "Monday, January 1, 2024", fromNative.FormatDate())
}

func TestTimestampNormalizationIsIdempotent(t *testing.T) {
	first, err := json.Marshal(NewTimestamp(time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	var restored Timestamp
	require.NoError(t, json.Unmarshal(first, &restored))

	second, err := json.Marshal(restored)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestTimestampNull(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	require.True(t, ts.IsZero())

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
	require.Empty(t, ts.FormatDate())
}
