package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean text unchanged",
			input:    "Leaking faucet",
			expected: "Leaking faucet",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  broken handle \n",
			expected: "broken handle",
		},
		{
			name:     "nul bytes stripped",
			input:    "bad\x00input",
			expected: "badinput",
		},
		{
			name:     "invalid utf8 stripped",
			input:    "caf\xff\xfee",
			expected: "cafe",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input))
		})
	}
}
