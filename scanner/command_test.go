package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Command
		wantErr bool
	}{
		{name: "start", raw: `{"payload":{"scan":true}}`, want: Command{Scan: true}},
		{name: "stop", raw: `{"payload":{"scan":false}}`, want: Command{Scan: false}},
		{name: "extra fields are ignored", raw: `{"topic":"x","payload":{"scan":true,"other":1}}`, want: Command{Scan: true}},
		{name: "not json", raw: `scan`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
		{name: "no payload", raw: `{"scan":true}`, wantErr: true},
		{name: "payload is a string", raw: `{"payload":"scan"}`, wantErr: true},
		{name: "payload is null", raw: `{"payload":null}`, wantErr: true},
		{name: "payload without scan", raw: `{"payload":{}}`, wantErr: true},
		{name: "scan is a string", raw: `{"payload":{"scan":"true"}}`, wantErr: true},
		{name: "scan is a number", raw: `{"payload":{"scan":1}}`, wantErr: true},
		{name: "scan is null", raw: `{"payload":{"scan":null}}`, wantErr: true},
		{name: "top level array", raw: `[{"payload":{"scan":true}}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrIncorrectInput, "rejections MUST wrap ErrIncorrectInput")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
