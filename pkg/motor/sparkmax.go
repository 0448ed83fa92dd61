package motor

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// SparkMax-style frame layout. The controller is addressed by a small
// device ID in the low bits of the 29-bit arbitration ID; the API class in
// the bits above selects the operation.
const (
	apiVoltageSetpoint = 0x042
	apiIdleModeConfig  = 0x078

	maxDeviceID = 63
	maxVoltage  = 12.0
)

func arbitrationID(api uint32, deviceID uint8) uint32 {
	return api<<6 | uint32(deviceID)
}

// SparkMax is a CAN bus voltage-mode motor controller handle.
type SparkMax struct {
	deviceID uint8
	conn     net.Conn
	tx       *socketcan.Transmitter
}

// NewSparkMax opens the CAN interface and addresses the controller with the
// given device ID and motor type. Construction fails if the bus cannot be
// dialed or the ID is out of range; that failure is fatal to the caller —
// a misaddressed actuator is a wiring or configuration error, not a
// runtime condition.
func NewSparkMax(ctx context.Context, iface string, deviceID int, motorType Type) (*SparkMax, error) {
	if deviceID < 0 || deviceID > maxDeviceID {
		return nil, fmt.Errorf("spark max device ID %d out of range [0, %d]", deviceID, maxDeviceID)
	}
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("spark max dial %s: %w", iface, err)
	}
	m := &SparkMax{
		deviceID: uint8(deviceID),
		conn:     conn,
		tx:       socketcan.NewTransmitter(conn),
	}
	if err := m.configure(ctx, motorType); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

func (m *SparkMax) configure(ctx context.Context, motorType Type) error {
	var f can.Frame
	f.ID = arbitrationID(apiIdleModeConfig, m.deviceID)
	f.IsExtended = true
	f.Length = 2
	f.Data[0] = byte(Coast)
	f.Data[1] = byte(motorType)
	if err := m.tx.TransmitFrame(ctx, f); err != nil {
		return fmt.Errorf("spark max configure: %w", err)
	}
	return nil
}

// SetVoltage commands the output voltage, clamped to the bus maximum.
// The setpoint is a little-endian float32 in the first four data bytes.
func (m *SparkMax) SetVoltage(volts float64) error {
	if volts > maxVoltage {
		volts = maxVoltage
	} else if volts < -maxVoltage {
		volts = -maxVoltage
	}

	var f can.Frame
	f.ID = arbitrationID(apiVoltageSetpoint, m.deviceID)
	f.IsExtended = true
	f.Length = 8
	binary.LittleEndian.PutUint32(f.Data[0:4], math.Float32bits(float32(volts)))

	if err := m.tx.TransmitFrame(context.Background(), f); err != nil {
		return fmt.Errorf("spark max set voltage: %w", err)
	}
	return nil
}

// SetIdleMode configures brake or coast behavior at zero command.
func (m *SparkMax) SetIdleMode(mode IdleMode) error {
	var f can.Frame
	f.ID = arbitrationID(apiIdleModeConfig, m.deviceID)
	f.IsExtended = true
	f.Length = 1
	f.Data[0] = byte(mode)

	if err := m.tx.TransmitFrame(context.Background(), f); err != nil {
		return fmt.Errorf("spark max set idle mode: %w", err)
	}
	return nil
}

// Close closes the bus connection.
func (m *SparkMax) Close() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

var _ Motor = (*SparkMax)(nil)
