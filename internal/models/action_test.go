package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	tests := []struct {
		in   string
		want ActionKind
	}{
		{in: "CREATE", want: ActionCreate},
		{in: "update", want: ActionUpdate},
		{in: " Delete ", want: ActionDelete},
	}
	for _, tt := range tests {
		got, err := ParseActionKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseActionKind("PATCH")
	assert.Error(t, err)
}
