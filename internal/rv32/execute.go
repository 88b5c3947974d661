package rv32

import "errors"

// outcome is the tentative result of one instruction: at most one register
// write, one PC redirect and one exception cause. Retire interprets it, which
// is what keeps fault semantics clean (a failing store must not write rd, a
// trap overrides pc). Memory, CSR state and the LR/SC reservation are updated
// during execution, and the Zcmp pop and move-pair instructions, which write
// more than one register, write the register file directly once they can no
// longer fault.
type outcome struct {
	rd      uint32
	rdVal   uint32
	hasRd   bool
	pcVal   uint32
	hasPC   bool
	cause   uint32
	trapped bool
}

func (o *outcome) write(rd, val uint32) {
	o.rd, o.rdVal, o.hasRd = rd, val, true
}

func (o *outcome) jump(target uint32) {
	o.pcVal, o.hasPC = target, true
}

func (o *outcome) raise(cause uint32) {
	o.cause, o.trapped = cause, true
}

// Step fetches, decodes, executes and retires one instruction. Architectural
// exceptions are handled internally by redirecting to the trap vector; the
// only error Step returns is the guest's termination request from the exit
// device, which aborts the step before retire.
func (c *Core) Step() error {
	var o outcome

	lo, loErr := c.Bus.Read16(c.PC)
	hi, hiErr := c.Bus.Read16(c.PC + 2)
	instr := uint32(lo) | uint32(hi)<<16
	compressed := lo&0x3 != 0x3

	if loErr != nil || (!compressed && hiErr != nil) {
		o.raise(CauseInstrFault)
	} else if compressed {
		instr &= 0xffff
		if err := c.exec16(instr, &o); err != nil {
			return err
		}
	} else {
		if err := c.exec32(instr, &o); err != nil {
			return err
		}
	}

	if c.Tracer != nil {
		c.Tracer.Step(c.PC, instr, compressed, &o)
	}

	if o.trapped {
		target := c.CSR.TrapEnter(o.cause, c.PC)
		o.jump(target)
		if c.Tracer != nil {
			c.Tracer.Trap(o.cause, target)
		}
	}

	if o.hasPC {
		c.PC = o.pcVal
	} else if compressed {
		c.PC += 2
	} else {
		c.PC += 4
	}
	if !o.trapped && o.hasRd {
		c.WriteReg(o.rd, o.rdVal)
	}
	c.CSR.Step()
	return nil
}

// halting reports whether a bus write error is the guest's termination
// request rather than an ordinary store fault.
func halting(err error) bool {
	var h *HaltError
	return errors.As(err, &h)
}

func (c *Core) exec32(instr uint32, o *outcome) error {
	rs1 := c.X[rs1Field(instr)]
	rs2 := c.X[rs2Field(instr)]
	rd := rdField(instr)

	switch opcField(instr) {
	case opcOp:
		c.execOp(instr, rs1, rs2, rd, o)
	case opcOpImm:
		c.execOpImm(instr, rs1, rd, o)
	case opcBranch:
		c.execBranch(instr, rs1, rs2, o)
	case opcLoad:
		c.execLoad(instr, rs1, rd, o)
	case opcStore:
		return c.execStore(instr, rs1, rs2, o)
	case opcAMO:
		return c.execAMO(instr, rs1, rs2, rd, o)
	case opcJal:
		o.write(rd, c.PC+4)
		o.jump(c.PC + immJ(instr))
	case opcJalr:
		o.write(rd, c.PC+4)
		o.jump((rs1 + immI(instr)) &^ 1)
	case opcLui:
		o.write(rd, immU(instr))
	case opcAuipc:
		o.write(rd, c.PC+immU(instr))
	case opcSystem:
		c.execSystem(instr, rs1, rd, o)
	case opcCustom0:
		c.execCustom0(instr, rs1, rs2, rd, o)
	default:
		o.raise(CauseIllegalInstr)
	}
	return nil
}

func (c *Core) execOp(instr, rs1, rs2, rd uint32, o *outcome) {
	f3 := funct3(instr)
	switch {
	case funct7(instr) == 0b00_00000:
		switch f3 {
		case 0b000:
			o.write(rd, rs1+rs2)
		case 0b001:
			o.write(rd, rs1<<(rs2&0x1f))
		case 0b010:
			o.write(rd, b2u(int32(rs1) < int32(rs2)))
		case 0b011:
			o.write(rd, b2u(rs1 < rs2))
		case 0b100:
			o.write(rd, rs1^rs2)
		case 0b101:
			o.write(rd, rs1>>(rs2&0x1f))
		case 0b110:
			o.write(rd, rs1|rs2)
		case 0b111:
			o.write(rd, rs1&rs2)
		}
	case funct7(instr) == 0b00_00001:
		c.execOpMul(f3, rs1, rs2, rd, o)
	case funct7(instr) == 0b01_00000:
		switch f3 {
		case 0b000:
			o.write(rd, rs1-rs2)
		case 0b100:
			o.write(rd, rs1^(^rs2)) // Zbb xnor
		case 0b101:
			o.write(rd, uint32(int32(rs1)>>(rs2&0x1f)))
		case 0b110:
			o.write(rd, rs1|^rs2) // Zbb orn
		case 0b111:
			o.write(rd, rs1&^rs2) // Zbb andn
		default:
			o.raise(CauseIllegalInstr)
		}
	case encBclr.match(instr):
		o.write(rd, rs1&^(1<<(rs2&0x1f)))
	case encBext.match(instr):
		o.write(rd, rs1>>(rs2&0x1f)&0x1)
	case encBinv.match(instr):
		o.write(rd, rs1^1<<(rs2&0x1f))
	case encBset.match(instr):
		o.write(rd, rs1|1<<(rs2&0x1f))
	case encSh1add.match(instr):
		o.write(rd, rs1<<1+rs2)
	case encSh2add.match(instr):
		o.write(rd, rs1<<2+rs2)
	case encSh3add.match(instr):
		o.write(rd, rs1<<3+rs2)
	case encMax.match(instr):
		o.write(rd, pick(int32(rs1) > int32(rs2), rs1, rs2))
	case encMaxu.match(instr):
		o.write(rd, pick(rs1 > rs2, rs1, rs2))
	case encMin.match(instr):
		o.write(rd, pick(int32(rs1) < int32(rs2), rs1, rs2))
	case encMinu.match(instr):
		o.write(rd, pick(rs1 < rs2, rs1, rs2))
	case encRor.match(instr):
		o.write(rd, ror(rs1, rs2))
	case encRol.match(instr):
		o.write(rd, rol(rs1, rs2))
	case encPack.match(instr):
		o.write(rd, rs1&0xffff|rs2<<16)
	case encPackh.match(instr):
		o.write(rd, rs1&0xff|rs2&0xff<<8)
	case encClmul.match(instr):
		o.write(rd, uint32(clmul(rs1, rs2)))
	case encClmulh.match(instr):
		o.write(rd, uint32(clmul(rs1, rs2)>>32))
	case encClmulr.match(instr):
		o.write(rd, uint32(clmul(rs1, rs2)>>31))
	default:
		o.raise(CauseIllegalInstr)
	}
}

// execOpMul implements the M extension. Multiplies pre-extend each operand to
// 64 bits according to the per-operand signedness, then slice the product.
func (c *Core) execOpMul(f3, rs1, rs2, rd uint32, o *outcome) {
	if f3 < 0b100 {
		a := uint64(rs1)
		b := uint64(rs2)
		if f3 != 0b011 {
			a = uint64(int64(int32(rs1)))
		}
		if f3 < 0b010 {
			b = uint64(int64(int32(rs2)))
		}
		product := a * b
		if f3 == 0b000 {
			o.write(rd, uint32(product))
		} else {
			o.write(rd, uint32(product>>32))
		}
		return
	}
	switch f3 {
	case 0b100: // div
		switch {
		case rs2 == 0:
			o.write(rd, ^uint32(0))
		case rs2 == ^uint32(0):
			o.write(rd, -rs1)
		default:
			o.write(rd, uint32(int32(rs1)/int32(rs2)))
		}
	case 0b101: // divu
		if rs2 == 0 {
			o.write(rd, ^uint32(0))
		} else {
			o.write(rd, rs1/rs2)
		}
	case 0b110: // rem
		switch {
		case rs2 == 0:
			o.write(rd, rs1)
		case rs2 == ^uint32(0):
			o.write(rd, 0)
		default:
			o.write(rd, uint32(int32(rs1)%int32(rs2)))
		}
	case 0b111: // remu
		if rs2 == 0 {
			o.write(rd, rs1)
		} else {
			o.write(rd, rs1%rs2)
		}
	}
}

func (c *Core) execOpImm(instr, rs1, rd uint32, o *outcome) {
	imm := immI(instr)
	shamt := rs2Field(instr)
	switch funct3(instr) {
	case 0b000:
		o.write(rd, rs1+imm)
	case 0b010:
		o.write(rd, b2u(int32(rs1) < int32(imm)))
	case 0b011:
		o.write(rd, b2u(rs1 < imm))
	case 0b100:
		o.write(rd, rs1^imm)
	case 0b110:
		o.write(rd, rs1|imm)
	case 0b111:
		o.write(rd, rs1&imm)
	case 0b001, 0b101:
		switch {
		case funct7(instr) == 0 && funct3(instr) == 0b001:
			o.write(rd, rs1<<shamt)
		case funct7(instr) == 0 && funct3(instr) == 0b101:
			o.write(rd, rs1>>shamt)
		case funct7(instr) == 0b01_00000 && funct3(instr) == 0b101:
			o.write(rd, uint32(int32(rs1)>>shamt))
		case encBclri.match(instr):
			o.write(rd, rs1&^(1<<shamt))
		case encBinvi.match(instr):
			o.write(rd, rs1^1<<shamt)
		case encBseti.match(instr):
			o.write(rd, rs1|1<<shamt)
		case encBexti.match(instr):
			o.write(rd, rs1>>shamt&0x1)
		case encClz.match(instr):
			o.write(rd, clz(rs1))
		case encCtz.match(instr):
			o.write(rd, ctz(rs1))
		case encCpop.match(instr):
			o.write(rd, cpop(rs1))
		case encSextB.match(instr):
			o.write(rd, sext(rs1, 7))
		case encSextH.match(instr):
			o.write(rd, sext(rs1, 15))
		case encZip.match(instr):
			o.write(rd, zip(rs1))
		case encUnzip.match(instr):
			o.write(rd, unzip(rs1))
		case encBrev8.match(instr):
			o.write(rd, brev8(rs1))
		case encOrcB.match(instr):
			o.write(rd, orcB(rs1))
		case encRev8.match(instr):
			o.write(rd, rev8(rs1))
		case encRori.match(instr):
			o.write(rd, ror(rs1, shamt))
		default:
			o.raise(CauseIllegalInstr)
		}
	}
}

func (c *Core) execBranch(instr, rs1, rs2 uint32, o *outcome) {
	target := c.PC + immB(instr)
	var taken bool
	switch funct3(instr) & 0b110 {
	case 0b000:
		taken = rs1 == rs2
	case 0b100:
		taken = int32(rs1) < int32(rs2)
	case 0b110:
		taken = rs1 < rs2
	default:
		o.raise(CauseIllegalInstr)
		return
	}
	if funct3(instr)&0b001 != 0 {
		taken = !taken
	}
	if taken {
		o.jump(target)
	}
}

func (c *Core) execLoad(instr, rs1, rd uint32, o *outcome) {
	addr := rs1 + immI(instr)
	f3 := funct3(instr)
	alignMask := ^(^uint32(0) << (f3 & 0x3))
	switch {
	case f3 == 0b011 || f3 > 0b101:
		o.raise(CauseIllegalInstr)
	case addr&alignMask != 0:
		o.raise(CauseLoadAlign)
	case f3 == 0b000:
		if v, err := c.Bus.Read8(addr); err == nil {
			o.write(rd, sext(uint32(v), 7))
		} else {
			o.raise(CauseLoadFault)
		}
	case f3 == 0b001:
		if v, err := c.Bus.Read16(addr); err == nil {
			o.write(rd, sext(uint32(v), 15))
		} else {
			o.raise(CauseLoadFault)
		}
	case f3 == 0b010:
		if v, err := c.Bus.Read32(addr); err == nil {
			o.write(rd, v)
		} else {
			o.raise(CauseLoadFault)
		}
	case f3 == 0b100:
		if v, err := c.Bus.Read8(addr); err == nil {
			o.write(rd, uint32(v))
		} else {
			o.raise(CauseLoadFault)
		}
	case f3 == 0b101:
		if v, err := c.Bus.Read16(addr); err == nil {
			o.write(rd, uint32(v))
		} else {
			o.raise(CauseLoadFault)
		}
	}
}

func (c *Core) execStore(instr, rs1, rs2 uint32, o *outcome) error {
	addr := rs1 + immS(instr)
	f3 := funct3(instr)
	alignMask := ^(^uint32(0) << (f3 & 0x3))
	if f3 > 0b010 {
		o.raise(CauseIllegalInstr)
		return nil
	}
	if addr&alignMask != 0 {
		o.raise(CauseStoreAlign)
		return nil
	}
	var err error
	switch f3 {
	case 0b000:
		err = c.Bus.Write8(addr, uint8(rs2))
	case 0b001:
		err = c.Bus.Write16(addr, uint16(rs2))
	case 0b010:
		err = c.Bus.Write32(addr, rs2)
	}
	if err != nil {
		if halting(err) {
			return err
		}
		o.raise(CauseStoreFault)
	}
	return nil
}

func (c *Core) execAMO(instr, rs1, rs2, rd uint32, o *outcome) error {
	switch {
	case encLrW.match(instr):
		if rs1&0x3 != 0 {
			o.raise(CauseLoadAlign)
		} else if v, err := c.Bus.Read32(rs1); err == nil {
			o.write(rd, v)
			c.LoadReserved = true
		} else {
			o.raise(CauseLoadFault)
		}
	case encScW.match(instr):
		if rs1&0x3 != 0 {
			o.raise(CauseStoreAlign)
		} else if c.LoadReserved {
			c.LoadReserved = false
			if err := c.Bus.Write32(rs1, rs2); err == nil {
				o.write(rd, 0)
			} else if halting(err) {
				return err
			} else {
				o.raise(CauseStoreFault)
			}
		} else {
			o.write(rd, 1)
		}
	case encAmoswapW.match(instr), encAmoaddW.match(instr), encAmoxorW.match(instr),
		encAmoandW.match(instr), encAmoorW.match(instr), encAmominW.match(instr),
		encAmomaxW.match(instr), encAmominuW.match(instr), encAmomaxuW.match(instr):
		if rs1&0x3 != 0 {
			o.raise(CauseStoreAlign)
			return nil
		}
		old, err := c.Bus.Read32(rs1)
		if err != nil {
			// the architecture classes AMOs as store operations
			o.raise(CauseStoreFault)
			return nil
		}
		var next uint32
		switch {
		case encAmoswapW.match(instr):
			next = rs2
		case encAmoaddW.match(instr):
			next = old + rs2
		case encAmoxorW.match(instr):
			next = old ^ rs2
		case encAmoandW.match(instr):
			next = old & rs2
		case encAmoorW.match(instr):
			next = old | rs2
		case encAmominW.match(instr):
			next = pick(int32(old) < int32(rs2), old, rs2)
		case encAmomaxW.match(instr):
			next = pick(int32(old) > int32(rs2), old, rs2)
		case encAmominuW.match(instr):
			next = pick(old < rs2, old, rs2)
		case encAmomaxuW.match(instr):
			next = pick(old > rs2, old, rs2)
		}
		if err := c.Bus.Write32(rs1, next); err != nil {
			if halting(err) {
				return err
			}
			o.raise(CauseStoreFault)
			return nil
		}
		o.write(rd, old)
	default:
		o.raise(CauseIllegalInstr)
	}
	return nil
}

func (c *Core) execSystem(instr, rs1, rd uint32, o *outcome) {
	f3 := funct3(instr)
	csrAddr := uint16(instr >> 20)

	if f3 >= 0b001 && f3 <= 0b011 || f3 >= 0b101 {
		op := CSROp(f3&0x3 - 1)
		operand := rs1
		if f3 >= 0b101 {
			// immediate form: the rs1 field is a 5-bit zero-extended literal
			operand = rs1Field(instr)
		}
		// The read must come first: set/clear combine the old value with the
		// operand, and a CSRRW with rd == x0 must not read at all.
		if op != CSRWrite || rd != 0 {
			v, ok := c.CSR.Read(csrAddr)
			if !ok {
				o.raise(CauseIllegalInstr)
				return
			}
			o.write(rd, v)
		}
		if op == CSRWrite || rs1Field(instr) != 0 {
			if !c.CSR.Write(csrAddr, operand, op) {
				o.raise(CauseIllegalInstr)
			}
		}
		return
	}

	switch {
	case encMret.match(instr):
		if c.CSR.Priv() == PrivMachine {
			o.jump(c.CSR.TrapMRet())
		} else {
			o.raise(CauseIllegalInstr)
		}
	case encEcall.match(instr):
		o.raise(CauseEcallU + c.CSR.Priv())
	case encEbreak.match(instr):
		o.raise(CauseBreakpoint)
	default:
		o.raise(CauseIllegalInstr)
	}
}

func (c *Core) execCustom0(instr, rs1, rs2, rd uint32, o *outcome) {
	size := instr>>26&0x7 + 1
	switch {
	case encBextm.match(instr):
		o.write(rd, rs1>>(rs2&0x1f)&^(^uint32(0)<<size))
	case encBextmi.match(instr):
		o.write(rd, rs1>>rs2Field(instr)&^(^uint32(0)<<size))
	default:
		o.raise(CauseIllegalInstr)
	}
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func pick(cond bool, a, b uint32) uint32 {
	if cond {
		return a
	}
	return b
}
