package rv32

import (
	"context"
	"fmt"
)

// Machine is one hart wired to a bus.
type Machine struct {
	Core *Core
	Bus  *Bus
}

// ResetVectorOffset is where execution starts relative to the RAM base
// unless the driver moves it with SetPC.
const ResetVectorOffset = 0x40

// NewMachine creates a machine with a RAM window at [ramBase,
// ramBase+ramSize) and the reset vector at ramBase+0x40.
func NewMachine(ramBase, ramSize uint32) (*Machine, error) {
	bus, err := NewBus(ramBase, ramSize)
	if err != nil {
		return nil, err
	}
	return &Machine{
		Core: NewCore(bus, ramBase+ResetVectorOffset),
		Bus:  bus,
	}, nil
}

// SetPC moves the program counter, overriding the default reset vector.
func (m *Machine) SetPC(pc uint32) {
	m.Core.PC = pc
}

// AddDevice adds a device to the bus.
func (m *Machine) AddDevice(base uint32, dev Device) {
	m.Bus.AddDevice(base, dev)
}

// LoadBinary loads a flat binary image at RAM offset 0. Images larger than
// RAM are rejected.
func (m *Machine) LoadBinary(data []byte) error {
	if uint32(len(data)) > m.Bus.RAMSize() {
		return fmt.Errorf("binary file (%d bytes) is larger than memory (%d bytes)",
			len(data), m.Bus.RAMSize())
	}
	return m.Bus.LoadBytes(m.Bus.RAMBase(), data)
}

// Run steps the hart up to maxSteps times. It returns the number of steps
// executed and the error that stopped the run: nil when the budget was
// exhausted, a *HaltError when the guest wrote the exit port, or the
// context's error on cancellation.
func (m *Machine) Run(ctx context.Context, maxSteps int64) (int64, error) {
	for i := int64(0); i < maxSteps; i++ {
		if i&0xfff == 0 && ctx.Err() != nil {
			return i, ctx.Err()
		}
		if err := m.Core.Step(); err != nil {
			return i + 1, err
		}
	}
	return maxSteps, nil
}
