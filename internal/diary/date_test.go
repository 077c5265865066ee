package diary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2023-02-29", "2024/01/01", "2024-1-1", "20240101", "2024-01-01T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrValidation, "input %q", bad)
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	utc := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-01", DateOf(utc).String())
	assert.Equal(t, "2024-03-02", DateOf(utc.In(seoul)).String())
}

func TestDate_Ordering(t *testing.T) {
	a := Date{Year: 2024, Month: time.January, Day: 31}
	b := Date{Year: 2024, Month: time.February, Day: 1}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.True(t, Date{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestDate_Scan(t *testing.T) {
	want := Date{Year: 2024, Month: time.May, Day: 5}

	tests := []struct {
		name string
		src  any
	}{
		{"time", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)},
		{"string", "2024-05-05"},
		{"bytes", []byte("2024-05-05")},
		{"timestamp_string", "2024-05-05 00:00:00+00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, want, d)
		})
	}

	var d Date
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("May 5"))
}

func TestDate_ValueAndJSON(t *testing.T) {
	d := Date{Year: 2020, Month: time.January, Day: 20}

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2020-01-20", v)

	b, err := json.Marshal(struct {
		Date Date `json:"date"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2020-01-20"}`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2020-01-20"`), &back))
	assert.Equal(t, d, back)
	assert.Error(t, json.Unmarshal([]byte(`"20-01-2020"`), &back))
}
