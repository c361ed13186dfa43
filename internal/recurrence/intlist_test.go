package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIntList(t *testing.T) {
	assert.Equal(t, "[1, 3, 5]", FormatIntList([]int{1, 3, 5}))
	assert.Equal(t, "[-3]", FormatIntList([]int{-3}))
	assert.Equal(t, "", FormatIntList(nil))
	assert.Equal(t, "", FormatIntList([]int{}))
}

func TestParseIntList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []int
	}{
		{"canonical", "[1, 3, 5]", []int{1, 3, 5}},
		{"no spaces", "[1,3,5]", []int{1, 3, 5}},
		{"no brackets", "1, 3, 5", []int{1, 3, 5}},
		{"negative values", "[-1, 25]", []int{-1, 25}},
		{"single value", "[4]", []int{4}},
		{"empty string", "", nil},
		{"empty brackets", "[]", nil},
		{"garbage tokens skipped", "[1, x, 3]", []int{1, 3}},
		{"all garbage", "[a, b]", nil},
		{"stray whitespace", "  [ 2 , 7 ]  ", []int{2, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseIntList(tc.in))
		})
	}
}
