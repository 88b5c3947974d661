// Package tbio implements the testbench I/O device. A write to the exit port
// terminates the simulation with the written value as exit code; two further
// ports let guest code print through the host.
package tbio

import (
	"fmt"
	"io"

	"github.com/rvlab/h3sim/internal/rv32"
)

// Port offsets
const (
	ExitOffset    = 0x0
	PutCharOffset = 0x4
	PutU32Offset  = 0x8
	deviceSize    = 0xc
)

// Device is the testbench I/O region. Out is the destination for the print
// ports; a nil Out discards them.
type Device struct {
	Out io.Writer
}

// Size implements rv32.Device.
func (d *Device) Size() uint32 { return deviceSize }

// Read implements rv32.Device. All ports are write-only.
func (d *Device) Read(offset uint32, size int) (uint32, error) {
	return 0, rv32.ErrNoDevice
}

// Write implements rv32.Device.
func (d *Device) Write(offset uint32, size int, value uint32) error {
	switch offset {
	case ExitOffset:
		return &rv32.HaltError{Code: value}
	case PutCharOffset:
		if d.Out != nil {
			fmt.Fprintf(d.Out, "%c", rune(value&0xff))
		}
		return nil
	case PutU32Offset:
		if d.Out != nil {
			fmt.Fprintf(d.Out, "%08x\n", value)
		}
		return nil
	default:
		return rv32.ErrNoDevice
	}
}
