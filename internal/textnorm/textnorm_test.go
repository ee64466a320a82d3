package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"case and punctuation", "D Flip-Flop, AND gate!", "d flip-flop and gate"},
		{"ohm sign folds", "R1 = 10kΩ", "r1 10 kω"},
		{"micro sign folds", "4.7µF cap", "4.7 μf cap"},
		{"decimal kept, sentence dot dropped", "Supply is 3.3V.", "supply is 3.3 v"},
		{"curly apostrophe", "Mohr’s circle", "mohr's circle"},
		{"symbols kept", "±5% at 25°C", "5% at 25°c"},
		{"blank", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"d", "flip", "flop", "mohr's", "10", "kω"}, Fields(Normalize("D flip-flop, Mohr's 10kΩ")))
}

func TestToken(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Union", want: "union"},
		{in: "Mohr’s", want: "mohr's"},
		{in: "KΩ", want: "kω"},
		{in: "flip-flop", wantErr: true},
		{in: "two words", wantErr: true},
		{in: "!!!", wantErr: true},
		{in: "", wantErr: true},
		{in: "50%", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Token(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "does not normalize to a single word")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhrase(t *testing.T) {
	parts, err := Phrase("D Flip-Flop")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "flip", "flop"}, parts)

	_, err = Phrase("!!!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty after normalization")

	_, err = Phrase("  ")
	require.Error(t, err)
}
