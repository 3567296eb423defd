package hardware

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// TicksPerRevolution is the STS position resolution.
const TicksPerRevolution = 4096

// Default feetech bus settings.
const (
	DefaultBaudRate = 1_000_000
	DefaultTimeout  = 100 * time.Millisecond
)

// FeetechConfig opens a feetech bus.
type FeetechConfig struct {
	Port     string
	BaudRate int
	Timeout  time.Duration

	// ScanFrom and ScanTo bound the IDs probed on open.
	ScanFrom int
	ScanTo   int
}

// TicksToDegrees converts a raw STS position to degrees.
func TicksToDegrees(ticks int) float64 {
	return float64(ticks) * 360 / TicksPerRevolution
}

// DegreesToTicks converts degrees to the nearest raw STS position.
func DegreesToTicks(deg float64) int {
	return int(math.Round(deg * TicksPerRevolution / 360))
}

// FeetechBus is an open serial bus and the servos found on it.
type FeetechBus struct {
	mu     sync.Mutex // one transaction on the wire at a time
	bus    *feetech.Bus
	found  map[int]feetech.FoundServo
	port   string
	closed bool
}

// OpenFeetech opens the bus and scans for servos.
func OpenFeetech(ctx context.Context, cfg FeetechConfig) (*FeetechBus, error) {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ScanFrom <= 0 {
		cfg.ScanFrom = 1
	}
	if cfg.ScanTo < cfg.ScanFrom {
		cfg.ScanTo = cfg.ScanFrom
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening feetech bus %s: %w", cfg.Port, err)
	}

	servos, err := bus.Scan(ctx, cfg.ScanFrom, cfg.ScanTo)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scanning feetech bus %s: %w", cfg.Port, err)
	}

	found := make(map[int]feetech.FoundServo, len(servos))
	for _, s := range servos {
		found[int(s.ID)] = s
	}
	return &FeetechBus{bus: bus, found: found, port: cfg.Port}, nil
}

// IDs returns the servo IDs that answered the scan, sorted.
func (b *FeetechBus) IDs() []int {
	ids := make([]int, 0, len(b.found))
	for id := range b.found {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Servo returns a driver for servo id.
func (b *FeetechBus) Servo(id int) (*FeetechServo, error) {
	s, ok := b.found[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d on %s", ErrServoNotFound, id, b.port)
	}
	return &FeetechServo{
		bus:   b,
		id:    id,
		servo: feetech.NewServo(b.bus, s.ID, s.Model),
	}, nil
}

// Close closes the serial port.
func (b *FeetechBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.bus.Close()
}

// FeetechServo drives one STS servo. Torque is enabled on the first write
// and disabled by Release.
type FeetechServo struct {
	bus     *FeetechBus
	id      int
	servo   *feetech.Servo
	enabled bool
}

// ID returns the servo's bus ID.
func (s *FeetechServo) ID() int { return s.id }

// Angle reads the present position.
func (s *FeetechServo) Angle(ctx context.Context) (float64, error) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	pos, err := s.servo.Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("servo %d: read position: %w", s.id, err)
	}
	return TicksToDegrees(pos), nil
}

// SetAngle commands a new goal position.
func (s *FeetechServo) SetAngle(ctx context.Context, degrees float64) error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if !s.enabled {
		if err := s.servo.Enable(ctx); err != nil {
			return fmt.Errorf("servo %d: enable torque: %w", s.id, err)
		}
		s.enabled = true
	}
	if err := s.servo.SetPosition(ctx, DegreesToTicks(degrees)); err != nil {
		return fmt.Errorf("servo %d: set position: %w", s.id, err)
	}
	return nil
}

// Release disables torque.
func (s *FeetechServo) Release(ctx context.Context) error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if err := s.servo.Disable(ctx); err != nil {
		return fmt.Errorf("servo %d: disable torque: %w", s.id, err)
	}
	s.enabled = false
	return nil
}
