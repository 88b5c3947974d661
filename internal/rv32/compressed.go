package rv32

// exec16 executes a 16-bit instruction. Compressed encodings are executed
// directly rather than expanded: Zcmp bursts have no 32-bit equivalent, so
// expansion would only cover part of the quadrant anyway.
func (c *Core) exec16(instr uint32, o *outcome) error {
	switch instr & 0x3 {
	case 0b00:
		return c.execQuadrant0(instr, o)
	case 0b01:
		c.execQuadrant1(instr, o)
		return nil
	default:
		return c.execQuadrant2(instr, o)
	}
}

func (c *Core) execQuadrant0(instr uint32, o *outcome) error {
	switch {
	case instr == 0:
		// the all-zero encoding is reserved
		o.raise(CauseIllegalInstr)
	case encCAddi4spn.match(instr):
		o.write(cRs2S(instr), c.X[2]+
			(instr>>11&0x3)<<4+
			(instr>>7&0xf)<<6+
			(instr>>6&0x1)<<2+
			(instr>>5&0x1)<<3)
	case encCLw.match(instr):
		addr := c.X[cRs1S(instr)] +
			(instr>>6&0x1)<<2 +
			(instr>>10&0x7)<<3 +
			(instr>>5&0x1)<<6
		if v, err := c.Bus.Read32(addr); err == nil {
			o.write(cRs2S(instr), v)
		} else {
			o.raise(CauseLoadFault)
		}
	case encCSw.match(instr):
		addr := c.X[cRs1S(instr)] +
			(instr>>6&0x1)<<2 +
			(instr>>10&0x7)<<3 +
			(instr>>5&0x1)<<6
		if err := c.Bus.Write32(addr, c.X[cRs2S(instr)]); err != nil {
			if halting(err) {
				return err
			}
			o.raise(CauseStoreFault)
		}
	default:
		o.raise(CauseIllegalInstr)
	}
	return nil
}

func (c *Core) execQuadrant1(instr uint32, o *outcome) {
	switch {
	case encCAddi.match(instr):
		rd := cRs1L(instr)
		o.write(rd, c.X[rd]+immCI(instr))
	case encCJal.match(instr):
		o.jump(c.PC + immCJ(instr))
		o.write(1, c.PC+2)
	case encCLi.match(instr):
		o.write(cRs1L(instr), immCI(instr))
	case encCLui.match(instr):
		rd := cRs1L(instr)
		if rd == 2 {
			// C.ADDI16SP shares the encoding with C.LUI
			o.write(2, c.X[2]-
				(instr>>12&0x1)<<9+
				(instr>>6&0x1)<<4+
				(instr>>5&0x1)<<6+
				(instr>>3&0x3)<<7+
				(instr>>2&0x1)<<5)
		} else {
			o.write(rd, (instr>>2&0x1f)<<12-(instr>>12&0x1)<<17)
		}
	case encCSrli.match(instr):
		rd := cRs1S(instr)
		o.write(rd, c.X[rd]>>(instr>>2&0x1f))
	case encCSrai.match(instr):
		rd := cRs1S(instr)
		o.write(rd, uint32(int32(c.X[rd])>>(instr>>2&0x1f)))
	case encCAndi.match(instr):
		rd := cRs1S(instr)
		o.write(rd, c.X[rd]&immCI(instr))
	case encCSub.match(instr):
		o.write(cRs1S(instr), c.X[cRs1S(instr)]-c.X[cRs2S(instr)])
	case encCXor.match(instr):
		o.write(cRs1S(instr), c.X[cRs1S(instr)]^c.X[cRs2S(instr)])
	case encCOr.match(instr):
		o.write(cRs1S(instr), c.X[cRs1S(instr)]|c.X[cRs2S(instr)])
	case encCAnd.match(instr):
		o.write(cRs1S(instr), c.X[cRs1S(instr)]&c.X[cRs2S(instr)])
	case encCJ.match(instr):
		o.jump(c.PC + immCJ(instr))
	case encCBeqz.match(instr):
		if c.X[cRs1S(instr)] == 0 {
			o.jump(c.PC + immCB(instr))
		}
	case encCBnez.match(instr):
		if c.X[cRs1S(instr)] != 0 {
			o.jump(c.PC + immCB(instr))
		}
	default:
		o.raise(CauseIllegalInstr)
	}
}

func (c *Core) execQuadrant2(instr uint32, o *outcome) error {
	switch {
	case encCSlli.match(instr):
		rd := cRs1L(instr)
		o.write(rd, c.X[rd]<<(instr>>2&0x1f))
	case encCMv.match(instr):
		if cRs2L(instr) == 0 {
			// C.JR
			o.jump(c.X[cRs1L(instr)] &^ 1)
		} else {
			o.write(cRs1L(instr), c.X[cRs2L(instr)])
		}
	case encCAdd.match(instr):
		switch {
		case cRs2L(instr) != 0:
			rd := cRs1L(instr)
			o.write(rd, c.X[rd]+c.X[cRs2L(instr)])
		case cRs1L(instr) != 0:
			// C.JALR
			o.jump(c.X[cRs1L(instr)] &^ 1)
			o.write(1, c.PC+2)
		default:
			// C.EBREAK
			o.raise(CauseBreakpoint)
		}
	case encCLwsp.match(instr):
		addr := c.X[2] +
			(instr>>12&0x1)<<5 +
			(instr>>4&0x7)<<2 +
			(instr>>2&0x3)<<6
		if v, err := c.Bus.Read32(addr); err == nil {
			o.write(cRs1L(instr), v)
		} else {
			o.raise(CauseLoadFault)
		}
	case encCSwsp.match(instr):
		addr := c.X[2] +
			(instr>>9&0xf)<<2 +
			(instr>>7&0x3)<<6
		if err := c.Bus.Write32(addr, c.X[cRs2L(instr)]); err != nil {
			if halting(err) {
				return err
			}
			o.raise(CauseStoreFault)
		}
	case encCmPush.match(instr):
		return c.execPush(instr, o)
	case encCmPop.match(instr), encCmPopret.match(instr), encCmPopretz.match(instr):
		c.execPop(instr, o)
	case encCmMvsa01.match(instr):
		c.WriteReg(zcmpSReg(instr>>7&0x7), c.X[10])
		c.WriteReg(zcmpSReg(instr>>2&0x7), c.X[11])
	case encCmMva01s.match(instr):
		c.X[10] = c.X[zcmpSReg(instr>>7&0x7)]
		c.X[11] = c.X[zcmpSReg(instr>>2&0x7)]
	default:
		o.raise(CauseIllegalInstr)
	}
	return nil
}

// execPush stores the rlist registers below sp, highest register number at
// the highest address. A failed store leaves every register, including sp,
// untouched.
func (c *Core) execPush(instr uint32, o *outcome) error {
	mask := zcmpRegMask(instr)
	addr := c.X[2]
	for i := 31; i > 0; i-- {
		if mask&(1<<i) == 0 {
			continue
		}
		addr -= 4
		if err := c.Bus.Write32(addr, c.X[uint32(i)]); err != nil {
			if halting(err) {
				return err
			}
			o.raise(CauseStoreFault)
			return nil
		}
	}
	o.write(2, c.X[2]-zcmpStackAdj(instr))
	return nil
}

// execPop reloads the rlist registers from the stack, then optionally zeroes
// a0 and returns through the reloaded ra. Loads are buffered so a fault in
// the middle of the burst leaves the register file untouched.
func (c *Core) execPop(instr uint32, o *outcome) {
	mask := zcmpRegMask(instr)
	adj := zcmpStackAdj(instr)
	addr := c.X[2] + adj

	var loaded [32]uint32
	for i := 31; i > 0; i-- {
		if mask&(1<<i) == 0 {
			continue
		}
		addr -= 4
		v, err := c.Bus.Read32(addr)
		if err != nil {
			o.raise(CauseLoadFault)
			return
		}
		loaded[i] = v
	}
	for i := 31; i > 0; i-- {
		if mask&(1<<i) != 0 {
			c.X[uint32(i)] = loaded[i]
		}
	}
	if encCmPopretz.match(instr) {
		c.X[10] = 0
	}
	if encCmPopret.match(instr) || encCmPopretz.match(instr) {
		o.jump(c.X[1])
	}
	o.write(2, c.X[2]+adj)
}
