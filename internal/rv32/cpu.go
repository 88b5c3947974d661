// Package rv32 implements a 32-bit RISC-V hart executing RV32IMAC plus the
// Zba, Zbb, Zbc, Zbs, Zbkb and Zcmp extensions, with M-mode trap handling and
// U-mode privilege support.
package rv32

import "fmt"

// Privilege levels
const (
	PrivUser    uint32 = 0
	PrivMachine uint32 = 3
)

// mstatus bits
const (
	MstatusMIE      uint32 = 1 << 3
	MstatusMPIE     uint32 = 1 << 7
	MstatusMPP      uint32 = 3 << 11
	MstatusMPPShift        = 11
)

// Exception causes
const (
	CauseInstrFault   uint32 = 1
	CauseIllegalInstr uint32 = 2
	CauseBreakpoint   uint32 = 3
	CauseLoadAlign    uint32 = 4
	CauseLoadFault    uint32 = 5
	CauseStoreAlign   uint32 = 6
	CauseStoreFault   uint32 = 7
	CauseEcallU       uint32 = 8
	CauseEcallM       uint32 = 11
)

// Core represents the architectural state of one hart.
type Core struct {
	// Integer registers x0-x31. X[0] is kept zero by WriteReg.
	X [32]uint32

	// Program counter
	PC uint32

	// CSR file, including the privilege level
	CSR CSRFile

	// Reservation flag for LR.W/SC.W
	LoadReserved bool

	// Memory bus for fetch, loads and stores
	Bus *Bus

	// Per-step trace output, nil when disabled
	Tracer *Tracer
}

// NewCore creates a core with the given reset vector. All registers and CSRs
// start at zero and the privilege level is machine mode.
func NewCore(bus *Bus, resetVector uint32) *Core {
	return &Core{
		PC:  resetVector,
		CSR: NewCSRFile(),
		Bus: bus,
	}
}

// ReadReg reads an integer register (x0 always returns 0)
func (c *Core) ReadReg(reg uint32) uint32 {
	if reg == 0 {
		return 0
	}
	return c.X[reg]
}

// WriteReg writes an integer register (writes to x0 are ignored)
func (c *Core) WriteReg(reg uint32, val uint32) {
	if reg != 0 {
		c.X[reg] = val
	}
}

// sext sign-extends bits from the given sign bit position, staying in
// unsigned arithmetic: subtract the doubled sign bit.
func sext(bits uint32, signBit int) uint32 {
	if signBit >= 31 {
		return bits
	}
	return (bits & (1<<(signBit+1) - 1)) - ((bits & (1 << signBit)) << 1)
}

// HaltError is returned out of a step when the guest writes the exit port.
// The exit code is the value written.
type HaltError struct {
	Code uint32
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("guest requested halt: exit code %d", int32(e.Code))
}
