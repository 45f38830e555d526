package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputOption(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    InputOption
		wantErr bool
	}{
		{name: "empty defaults to user entered", input: "", want: InputOptionUserEntered},
		{name: "user entered", input: "user_entered", want: InputOptionUserEntered},
		{name: "raw", input: "raw", want: InputOptionRaw},
		{name: "case insensitive", input: "Raw", want: InputOptionRaw},
		{name: "whitespace trimmed", input: " USER_ENTERED ", want: InputOptionUserEntered},
		{name: "unknown", input: "formula", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInputOption(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
