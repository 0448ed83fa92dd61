package motor

import "testing"

func TestArbitrationID(t *testing.T) {
	cases := []struct {
		api      uint32
		deviceID uint8
		want     uint32
	}{
		{apiVoltageSetpoint, 0, 0x042 << 6},
		{apiVoltageSetpoint, 9, 0x042<<6 | 9},
		{apiIdleModeConfig, 63, 0x078<<6 | 63},
	}
	for _, c := range cases {
		if got := arbitrationID(c.api, c.deviceID); got != c.want {
			t.Errorf("arbitrationID(%#x, %d): got %#x, want %#x", c.api, c.deviceID, got, c.want)
		}
	}
}

func TestNewSparkMax_RejectsBadDeviceID(t *testing.T) {
	for _, id := range []int{-1, 64, 255} {
		if _, err := NewSparkMax(t.Context(), "vcan0", id, Brushless); err == nil {
			t.Errorf("device ID %d: expected error, got nil", id)
		}
	}
}
