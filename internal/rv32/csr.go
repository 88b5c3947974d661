package rv32

// CSR addresses
const (
	CSRMstatus       uint16 = 0x300
	CSRMisa          uint16 = 0x301
	CSRMie           uint16 = 0x304
	CSRMtvec         uint16 = 0x305
	CSRMcountinhibit uint16 = 0x320
	CSRMscratch      uint16 = 0x340
	CSRMepc          uint16 = 0x341
	CSRMcause        uint16 = 0x342
	CSRMtval         uint16 = 0x343
	CSRMip           uint16 = 0x344
	CSRMcycle        uint16 = 0xb00
	CSRMinstret      uint16 = 0xb02
	CSRMcycleh       uint16 = 0xb80
	CSRMinstreth     uint16 = 0xb82
	CSRMvendorid     uint16 = 0xf11
	CSRMarchid       uint16 = 0xf12
	CSRMimpid        uint16 = 0xf13
	CSRMhartid       uint16 = 0xf14
	CSRMconfigptr    uint16 = 0xf15
)

// Fixed read values
const (
	misaValue      uint32 = 0x40901105 // RV32IMACX + U
	marchidValue   uint32 = 0x1b
	mimpidValue    uint32 = 0x12345678
	mvendoridValue uint32 = 0xdeadbeef
	configptrValue uint32 = 0x9abcdef0
)

// CSR write operations
type CSROp int

const (
	CSRWrite CSROp = iota
	CSRSet
	CSRClear
)

// CSRFile holds the machine-mode CSRs and the current privilege level.
//
// Writes are staged and committed by Step at the end of the instruction, after
// the cycle/instret counters advance. A step that writes a counter half
// suppresses the auto-update of that half, so a CSRRW of mcycle reads the
// pre-increment value while the written value is observable on the next step.
type CSRFile struct {
	priv uint32

	mcycle        uint32
	mcycleh       uint32
	minstret      uint32
	minstreth     uint32
	mcountinhibit uint32
	mstatus       uint32
	mie           uint32
	mip           uint32
	mtvec         uint32
	mscratch      uint32
	mepc          uint32
	mcause        uint32

	pendingValid bool
	pendingAddr  uint16
	pendingData  uint32
}

// NewCSRFile returns a CSR file in its reset state: everything zero,
// privilege machine mode.
func NewCSRFile() CSRFile {
	return CSRFile{priv: PrivMachine}
}

// Priv returns the current privilege level.
func (c *CSRFile) Priv() uint32 { return c.priv }

// Read returns the value of a CSR, or ok=false when the address is out of
// range, requires more privilege than the hart has, or is not implemented.
func (c *CSRFile) Read(addr uint16) (uint32, bool) {
	if addr >= 1<<12 || uint32(addr>>8&3) > c.priv {
		return 0, false
	}

	switch addr {
	case CSRMisa:
		return misaValue, true
	case CSRMhartid:
		return 0, true
	case CSRMarchid:
		return marchidValue, true
	case CSRMimpid:
		return mimpidValue, true
	case CSRMvendorid:
		return mvendoridValue, true
	case CSRMconfigptr:
		return configptrValue, true

	case CSRMstatus:
		return c.mstatus, true
	case CSRMie:
		return c.mie, true
	case CSRMip:
		return c.mip, true
	case CSRMtvec:
		return c.mtvec, true
	case CSRMscratch:
		return c.mscratch, true
	case CSRMepc:
		return c.mepc, true
	case CSRMcause:
		return c.mcause, true
	case CSRMtval:
		return 0, true

	case CSRMcountinhibit:
		return c.mcountinhibit, true
	case CSRMcycle:
		return c.mcycle, true
	case CSRMcycleh:
		return c.mcycleh, true
	case CSRMinstret:
		return c.minstret, true
	case CSRMinstreth:
		return c.minstreth, true

	default:
		return 0, false
	}
}

// Write stages a CSR write to be committed by Step. CSRSet and CSRClear read
// the current value first and combine it with data. Returns false when the
// address is out of range, privileged beyond the current level, unreadable
// (for set/clear) or not writable; nothing is staged in that case.
func (c *CSRFile) Write(addr uint16, data uint32, op CSROp) bool {
	if addr >= 1<<12 || uint32(addr>>8&3) > c.priv {
		return false
	}
	if op == CSRSet || op == CSRClear {
		cur, ok := c.Read(addr)
		if !ok {
			return false
		}
		if op == CSRClear {
			data = cur &^ data
		} else {
			data = cur | data
		}
	}

	// Validate the address for writability now; the data is applied at the
	// end of Step. The hardwired cells below accept the write and discard
	// it at commit.
	switch addr {
	case CSRMisa, CSRMhartid, CSRMarchid, CSRMimpid:
	case CSRMstatus, CSRMie, CSRMip, CSRMtvec, CSRMscratch, CSRMepc, CSRMcause, CSRMtval:
	case CSRMcycle, CSRMcycleh, CSRMinstret, CSRMinstreth, CSRMcountinhibit:
	default:
		return false
	}

	c.pendingValid = true
	c.pendingAddr = addr
	c.pendingData = data
	return true
}

func (c *CSRFile) pendingIs(addr uint16) bool {
	return c.pendingValid && c.pendingAddr == addr
}

// Step commits the end-of-instruction CSR state: the 64-bit cycle and instret
// counters advance unless inhibited, a counter half written this step keeps
// the written value instead of the auto-update, and the staged write (if any)
// is applied with its per-CSR mask.
func (c *CSRFile) Step() {
	cycle := uint64(c.mcycleh)<<32 | uint64(c.mcycle)
	instret := uint64(c.minstreth)<<32 | uint64(c.minstret)
	if c.mcountinhibit&0x1 == 0 {
		cycle++
	}
	if c.mcountinhibit&0x4 == 0 {
		instret++
	}
	if !c.pendingIs(CSRMcycleh) {
		c.mcycleh = uint32(cycle >> 32)
	}
	if !c.pendingIs(CSRMcycle) {
		c.mcycle = uint32(cycle)
	}
	if !c.pendingIs(CSRMinstreth) {
		c.minstreth = uint32(instret >> 32)
	}
	if !c.pendingIs(CSRMinstret) {
		c.minstret = uint32(instret)
	}

	if c.pendingValid {
		switch c.pendingAddr {
		case CSRMstatus:
			c.mstatus = c.pendingData
		case CSRMie:
			c.mie = c.pendingData
		case CSRMtvec:
			c.mtvec = c.pendingData &^ 0x2
		case CSRMscratch:
			c.mscratch = c.pendingData
		case CSRMepc:
			c.mepc = c.pendingData &^ 0x1
		case CSRMcause:
			c.mcause = c.pendingData & 0x8000000f

		case CSRMcycle:
			c.mcycle = c.pendingData
		case CSRMcycleh:
			c.mcycleh = c.pendingData
		case CSRMinstret:
			c.minstret = c.pendingData
		case CSRMinstreth:
			c.minstreth = c.pendingData
		case CSRMcountinhibit:
			c.mcountinhibit = c.pendingData & 0x7
		}
		c.pendingValid = false
	}
}

// TrapEnter updates the trap state (including the privilege change to M) and
// returns the trap target PC.
func (c *CSRFile) TrapEnter(cause, epc uint32) uint32 {
	c.mstatus = c.mstatus&^MstatusMPP | c.priv<<MstatusMPPShift
	c.priv = PrivMachine

	if c.mstatus&MstatusMIE != 0 {
		c.mstatus |= MstatusMPIE
	} else {
		c.mstatus &^= MstatusMPIE
	}
	c.mstatus &^= MstatusMIE

	c.mcause = cause
	c.mepc = epc
	if c.mtvec&0x1 != 0 && cause&(1<<31) != 0 {
		return (c.mtvec &^ 3) + 4*(cause&^(1<<31))
	}
	return c.mtvec &^ 3
}

// TrapMRet restores the pre-trap state and returns mepc.
func (c *CSRFile) TrapMRet() uint32 {
	c.priv = c.mstatus >> MstatusMPPShift & 3

	if c.mstatus&MstatusMPIE != 0 {
		c.mstatus |= MstatusMIE
	} else {
		c.mstatus &^= MstatusMIE
	}
	c.mstatus &^= MstatusMPIE

	return c.mepc
}
