package diary

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tags
	}{
		{"none", "sunny walk by the river", Tags{}},
		{"simple", "walk #Park then #coffee", Tags{"park", "coffee"}},
		{"dedupe_case_insensitive", "#Rain #rain #RAIN", Tags{"rain"}},
		{"unicode", "오늘은 #산책 #비", Tags{"산책", "비"}},
		{"underscore_and_digits", "#day_1 #2024", Tags{"day_1", "2024"}},
		{"bare_hash", "# nothing", Tags{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.text)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTags_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "#t%d ", i)
	}
	assert.Len(t, ExtractTags(b.String()), maxTags)
}

func TestTags_ValueScan(t *testing.T) {
	v, err := Tags{"a", "b c"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b c"}`, v)

	v, err = Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var got Tags
	require.NoError(t, got.Scan(`{"a","b c"}`))
	assert.Equal(t, Tags{"a", "b c"}, got)

	require.NoError(t, got.Scan([]byte("{}")))
	assert.Equal(t, Tags{}, got)

	require.NoError(t, got.Scan(nil))
	assert.Equal(t, Tags{}, got)
}
