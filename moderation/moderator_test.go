package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func TestModerator_Censor(t *testing.T) {
	dictionary := []string{"badger", "snake", "mushroom"}

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean text untouched",
			input:    "hello there, how are you",
			expected: "hello there, how are you",
		},
		{
			name:     "single forbidden word",
			input:    "a badger crossed the road",
			expected: "a ****** crossed the road",
		},
		{
			name:     "case insensitive",
			input:    "BADGER badger BaDgEr",
			expected: "****** ****** ******",
		},
		{
			name:     "leet speak substitution",
			input:    "b4dger and 5nake",
			expected: "****** and *****",
		},
		{
			name:     "multiple distinct words",
			input:    "snake meets mushroom",
			expected: "***** meets ********",
		},
		{
			name:     "forbidden word split by punctuation",
			input:    "bad.ger",
			expected: "*******",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := require.New(t)
			moderator, err := NewModerator(dictionary, replacementChar)
			req.NoError(err)

			req.Equal(c.expected, moderator.Censor(c.input))
		})
	}
}

func TestModerator_CensorPreservesSurroundingRunes(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"snake"}, replacementChar)
	req.NoError(err)

	req.Equal("héllo ***** café", moderator.Censor("héllo snake café"))
}
