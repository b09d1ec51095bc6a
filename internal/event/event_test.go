package event_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srg/bluuki/internal/beacon"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/event"
	"github.com/srg/bluuki/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var detectedAt = time.UnixMilli(1700000000123)

func baseMeasurement() *event.Measurement {
	return &event.Measurement{
		PeripheralUUID: "2471894daeb6",
		LocalName:      "tag-1",
		DetectedAt:     detectedAt,
		DetectedBy:     "gateway-a",
		Advertisement: event.Advertisement{
			LocalName:        "tag-1",
			ManufacturerData: []byte{0x4c, 0x00},
			TxPowerLevel:     device.TxPowerUnknown,
		},
		RSSI: -70,
	}
}

func TestStatus_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		status   event.Status
		expected string
	}{
		{
			name:     "adapter powered on",
			status:   event.Status{StateChange: true, State: device.StatePoweredOn},
			expected: `{"statusUpdate":true,"error":false,"stateChange":true,"state":"poweredOn"}`,
		},
		{
			name:     "adapter forced stop",
			status:   event.Status{Error: true, StateChange: true, State: device.StatePoweredOff},
			expected: `{"statusUpdate":true,"error":true,"stateChange":true,"state":"poweredOff"}`,
		},
		{
			name:     "scan operation failure carries a reason",
			status:   event.Status{Error: true, State: device.StatePoweredOn, Reason: "start scan: scan operation failed: busy"},
			expected: `{"statusUpdate":true,"error":true,"stateChange":false,"state":"poweredOn","reason":"start scan: scan operation failed: busy"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(&tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data), "status JSON MUST keep key order")
			assert.Equal(t, event.KindStatus, tt.status.Kind())
		})
	}
}

func TestMeasurement_MarshalJSON_BaseFields(t *testing.T) {
	// GOAL: Verify a measurement with no decoded payload still carries every base field
	//
	// TEST SCENARIO: No iBeacon, no magnetic sample → base fields only, no flattened iBeacon keys

	m := baseMeasurement()

	testutils.NewJSONAsserter(t).AssertEvent(m, `{
		"payload": {"peripheralUuid": "2471894daeb6", "localName": "tag-1"},
		"peripheralUuid": "2471894daeb6",
		"localName": "tag-1",
		"detectedAt": 1700000000123,
		"detectedBy": "gateway-a",
		"advertisement": {
			"localName": "tag-1",
			"manufacturerData": "4c00",
			"serviceData": [],
			"serviceUuids": []
		},
		"rssi": -70
	}`)

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"payload":{"peripheralUuid":"2471894daeb6","localName":"tag-1"},"peripheralUuid"`),
		"payload MUST be the first key")
	assert.NotContains(t, string(data), "txPowerLevel", "unknown TX power MUST be omitted")
	assert.NotContains(t, string(data), "manufacturerUuid")
	assert.NotContains(t, string(data), "magnetfielddata")
}

func TestMeasurement_MarshalJSON_IBeaconFlattened(t *testing.T) {
	m := baseMeasurement()
	m.IBeacon = &beacon.IBeacon{
		ProximityUUID: uuid.MustParse("e2c56db5-dffb-48d2-b060-d0f5a71096e0"),
		Major:         1,
		Minor:         513,
		MeasuredPower: -59,
		Accuracy:      1.5,
		Proximity:     beacon.ProximityNear,
	}

	testutils.NewJSONAsserter(t).WithOptions(testutils.WithIgnoreExtraKeys(true)).AssertEvent(m, `{
		"manufacturerUuid": "e2c56db5dffb48d2b060d0f5a71096e0",
		"major": 1,
		"minor": 513,
		"measuredPower": -59,
		"accuracy": 1.5,
		"proximity": "near",
		"rssi": -70
	}`)

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	s := string(data)
	assert.Less(t, strings.Index(s, `"rssi"`), strings.Index(s, `"manufacturerUuid"`),
		"iBeacon fields MUST follow rssi")
}

func TestMeasurement_MarshalJSON_Magnetic(t *testing.T) {
	m := baseMeasurement()
	m.Magnetic = &beacon.MagneticField{
		Raw: []byte{0xFF, 0x00, 0x10, 0xFF, 0xFE, 0x01, 0x00},
		X:   16,
		Y:   -2,
		Z:   256,
	}

	testutils.NewJSONAsserter(t).WithOptions(testutils.WithIgnoreExtraKeys(true)).AssertEvent(m, `{
		"magnetfielddata": {"data": [255, 0, 16, 255, 254, 1, 0], "X": 16, "Y": -2, "Z": 256}
	}`)
}

func TestMeasurement_MarshalJSON_Advertisement(t *testing.T) {
	m := baseMeasurement()
	m.Advertisement = event.Advertisement{
		ServiceData:  []device.ServiceData{{UUID: "b000", Data: []byte{0xFF, 0x01}}},
		ServiceUUIDs: []string{"b000", "180f"},
		TxPowerLevel: -8,
	}

	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var decoded struct {
		Advertisement map[string]any `json:"advertisement"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	adv := decoded.Advertisement
	assert.Nil(t, adv["manufacturerData"], "absent manufacturer data MUST render as null")
	assert.Equal(t, []any{map[string]any{"uuid": "b000", "data": "ff01"}}, adv["serviceData"])
	assert.Equal(t, []any{"b000", "180f"}, adv["serviceUuids"])
	assert.Equal(t, float64(-8), adv["txPowerLevel"])
	assert.Equal(t, event.KindMeasurement, m.Kind())
}
