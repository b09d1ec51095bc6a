package hostio

import (
	"context"
	"strings"
	"testing"

	"github.com/srg/bluuki/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandReader_Run(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "one command per line",
			input: "{\"payload\":{\"scan\":true}}\n{\"payload\":{\"scan\":false}}\n",
			want:  []string{`{"payload":{"scan":true}}`, `{"payload":{"scan":false}}`},
		},
		{
			name:  "blank lines and surrounding space are skipped",
			input: "\n   \n  {\"payload\":{\"scan\":true}}  \r\n\n",
			want:  []string{`{"payload":{"scan":true}}`},
		},
		{
			name:  "last line without newline",
			input: `{"payload":{"scan":"yes"}}`,
			want:  []string{`{"payload":{"scan":"yes"}}`},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := NewCommandReader(strings.NewReader(tt.input), testutils.NewTestHelper(t).Logger)

			var got []string
			err := cr.Run(context.Background(), func(line []byte) { got = append(got, string(line)) })

			require.NoError(t, err, "end of input MUST not be an error")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandReader_LineTooLong(t *testing.T) {
	input := strings.Repeat("x", MaxCommandLine+1) + "\n"
	cr := NewCommandReader(strings.NewReader(input), nil)

	err := cr.Run(context.Background(), func([]byte) { t.Fatal("oversized line MUST not be delivered") })
	assert.ErrorContains(t, err, "exceeds")
}

func TestCommandReader_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cr := NewCommandReader(strings.NewReader("a\nb\nc\n"), nil)

	var got []string
	err := cr.Run(ctx, func(line []byte) {
		got = append(got, string(line))
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, got, "lines after cancel MUST not be delivered")
}
