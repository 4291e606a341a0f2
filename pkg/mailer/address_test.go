package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank", in: "  ", want: nil},
		{name: "single", in: " ana@example.com ", want: []string{"ana@example.com"}},
		{name: "comma", in: "a@example.com,b@example.com", want: []string{"a@example.com", "b@example.com"}},
		{name: "semicolon and gaps", in: "a@example.com; ;b@example.com,", want: []string{"a@example.com", "b@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SplitAddresses(tt.in))
		})
	}
}
