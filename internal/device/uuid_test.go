package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "16-bit UUID", input: "b000", expected: "b000"},
		{name: "16-bit UUID uppercase", input: "B000", expected: "b000"},
		{name: "16-bit UUID with 0x prefix", input: "0xb000", expected: "b000"},
		{name: "16-bit UUID with 0X prefix", input: "0XB000", expected: "b000"},
		{name: "SIG base UUID with dashes", input: "0000b000-0000-1000-8000-00805f9b34fb", expected: "b000"},
		{name: "SIG base UUID without dashes", input: "0000b00000001000800000805f9b34fb", expected: "b000"},
		{name: "SIG base UUID uppercase", input: "0000180D-0000-1000-8000-00805F9B34FB", expected: "180d"},
		{name: "custom 128-bit UUID is kept", input: "6e400001-b5a3-f393-e0a9-e50e24dcca9e", expected: "6e400001b5a3f393e0a9e50e24dcca9e"},
		{name: "wrong prefix is kept", input: "AA002902-0000-1000-8000-00805f9b34fb", expected: "aa00290200001000800000805f9b34fb"},
		{name: "32-bit UUID", input: "12345678", expected: "12345678"},
		{name: "surrounding whitespace", input: "  b000 ", expected: "b000"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestNormalizeUUIDs(t *testing.T) {
	assert.Nil(t, NormalizeUUIDs(nil))
	assert.Equal(t,
		[]string{"b000", "180d", "6e400001b5a3f393e0a9e50e24dcca9e"},
		NormalizeUUIDs([]string{"0xB000", "0000180d-0000-1000-8000-00805f9b34fb", "6E400001-B5A3-F393-E0A9-E50E24DCCA9E"}))
}

func TestNormalizeUUID_NoShortening(t *testing.T) {
	for _, input := range []string{
		"00002902-1234-5678-9abc-def012345678",
		"0000290200001000800000805f9b34fb00",
	} {
		t.Run(input, func(t *testing.T) {
			result := NormalizeUUID(input)
			assert.NotEqual(t, "2902", result)
			assert.Equal(t, strings.ToLower(strings.ReplaceAll(input, "-", "")), result)
		})
	}
}

func TestValidateUUID(t *testing.T) {
	t.Run("normalizes valid UUIDs", func(t *testing.T) {
		got, err := ValidateUUID("B000", "0000180d-0000-1000-8000-00805f9b34fb")
		require.NoError(t, err)
		assert.Equal(t, []string{"b000", "180d"}, got)
	})

	tests := []struct {
		name  string
		input []string
	}{
		{name: "no UUIDs", input: nil},
		{name: "empty UUID", input: []string{"b000", ""}},
		{name: "non-hex UUID", input: []string{"zzzz"}},
		{name: "odd length UUID", input: []string{"b00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateUUID(tt.input...)
			assert.Error(t, err)
		})
	}
}

func TestNormalizePeripheralID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "noble id is unchanged", input: "2471894daeb6", expected: "2471894daeb6"},
		{name: "colon separated MAC", input: "24:71:89:4D:AE:B6", expected: "2471894daeb6"},
		{name: "dash separated MAC", input: "24-71-89-4d-ae-b6", expected: "2471894daeb6"},
		{name: "darwin peripheral UUID", input: "5A0F6C1E-0000-4C3B-9E2D-1A2B3C4D5E6F", expected: "5a0f6c1e00004c3b9e2d1a2b3c4d5e6f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePeripheralID(tt.input))
		})
	}
}
