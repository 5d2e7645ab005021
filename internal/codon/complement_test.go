package codon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplementSequence(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{"ATGC", "TACG"},
		{"ATGGATTAA", "TACCTAATT"},
		{"A", "T"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.seq, func(t *testing.T) {
			got, err := ComplementSequence(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComplementSequence_Involution(t *testing.T) {
	for _, seq := range []string{"ATGGATTAA", "GGGCCCAAATTT", "ACGTACGTTGCA"} {
		once, err := ComplementSequence(seq)
		require.NoError(t, err)
		twice, err := ComplementSequence(once)
		require.NoError(t, err)
		assert.Equal(t, seq, twice)
	}
}

func TestComplementSequence_InvalidBase(t *testing.T) {
	tests := []string{"ATN", "atg", "AT-G"}
	for _, seq := range tests {
		t.Run(seq, func(t *testing.T) {
			_, err := ComplementSequence(seq)
			var ibe *InvalidBaseError
			assert.ErrorAs(t, err, &ibe)
		})
	}
}

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"simple", "ATGC", "GCAT"},
		{"single base", "A", "T"},
		{"palindrome", "ATAT", "ATAT"},
		{"codon GGT", "GGT", "ACC"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReverseComplement(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
