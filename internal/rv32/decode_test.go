package rv32

import (
	"testing"

	rv32asm "github.com/rvlab/h3sim/internal/asm/rv32"
)

// The encoders and the immediate decoders must agree: encoding an immediate
// and decoding it back is the identity for the interesting patterns.
func TestImmediateRoundTrips(t *testing.T) {
	iValues := []int32{0, 1, -1, 2047, -2048, 0x555, -0x556}
	for _, v := range iValues {
		insn, err := rv32asm.EncodeI(v, 0, 0, 0, 0x13)
		if err != nil {
			t.Fatalf("EncodeI(%d): %v", v, err)
		}
		if got := immI(insn); got != uint32(v) {
			t.Errorf("immI(%d): got %#x", v, got)
		}

		insn, err = rv32asm.EncodeS(v, 0, 0, 0, 0x23)
		if err != nil {
			t.Fatalf("EncodeS(%d): %v", v, err)
		}
		if got := immS(insn); got != uint32(v) {
			t.Errorf("immS(%d): got %#x", v, got)
		}
	}

	bValues := []int32{0, 2, -2, 4094, -4096, 0xaaa, -0xaac}
	for _, v := range bValues {
		insn, err := rv32asm.EncodeB(v, 0, 0, 0, 0x63)
		if err != nil {
			t.Fatalf("EncodeB(%d): %v", v, err)
		}
		if got := immB(insn); got != uint32(v) {
			t.Errorf("immB(%d): got %#x", v, got)
		}
	}

	jValues := []int32{0, 2, -2, 1 << 19, -(1 << 20), 0xaaaaa, -0x55556}
	for _, v := range jValues {
		insn, err := rv32asm.EncodeJ(v, 0, 0x6f)
		if err != nil {
			t.Fatalf("EncodeJ(%d): %v", v, err)
		}
		if got := immJ(insn); got != uint32(v) {
			t.Errorf("immJ(%d): got %#x", v, got)
		}
	}

	for _, bits := range []uint32{0, 0xfffff, 0xaaaaa, 0x55555} {
		insn := rv32asm.EncodeU(bits, 0, 0x37)
		if got := immU(insn); got != bits<<12 {
			t.Errorf("immU(%#x): got %#x", bits, got)
		}
	}
}

func TestCompressedImmediates(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 31, -32} {
		insn := uint32(rv32asm.CLi(0, v))
		if got := immCI(insn); got != uint32(v) {
			t.Errorf("immCI(%d): got %#x", v, got)
		}
	}

	// all-ones CI payload decodes to -1
	if got := immCI(0x1000 | 0x1f<<2); got != 0xffffffff {
		t.Errorf("immCI all ones: got %#x", got)
	}
	// sign bit only decodes to -32
	if got := immCI(0x1000); got != uint32(-32&0xffffffff) {
		t.Errorf("immCI sign only: got %#x", got)
	}
}

func TestFieldExtraction(t *testing.T) {
	insn := rv32asm.Add(3, 14, 21)
	if rdField(insn) != 3 || rs1Field(insn) != 14 || rs2Field(insn) != 21 {
		t.Errorf("field extraction: rd=%d rs1=%d rs2=%d",
			rdField(insn), rs1Field(insn), rs2Field(insn))
	}
	if opcField(insn) != opcOp || funct3(insn) != 0 || funct7(insn) != 0 {
		t.Errorf("opcode fields: opc=%#x f3=%d f7=%d",
			opcField(insn), funct3(insn), funct7(insn))
	}
}

func TestZcmpFields(t *testing.T) {
	if n := zcmpNumRegs(rv32asm.CmPush(0xf, 0)); n != 13 {
		t.Errorf("rlist 0xf: expected 13 regs, got %d", n)
	}
	if n := zcmpNumRegs(rv32asm.CmPush(4, 0)); n != 1 {
		t.Errorf("rlist 4: expected 1 reg, got %d", n)
	}
	if adj := zcmpStackAdj(rv32asm.CmPush(0xf, 0)); adj != 0x40 {
		t.Errorf("rlist 0xf: expected stack adj 0x40, got %#x", adj)
	}
	if adj := zcmpStackAdj(rv32asm.CmPush(4, 3)); adj != 0x10+48 {
		t.Errorf("rlist 4 spimm 3: expected %#x, got %#x", 0x10+48, zcmpStackAdj(rv32asm.CmPush(4, 3)))
	}
	if adj := zcmpStackAdj(rv32asm.CmPush(8, 0)); adj != 0x20 {
		t.Errorf("rlist 8: expected 0x20, got %#x", adj)
	}

	mask := zcmpRegMask(rv32asm.CmPush(6, 0)) // {ra, s0, s1}
	if mask != 1<<1|1<<8|1<<9 {
		t.Errorf("rlist 6 mask: got %#x", mask)
	}
	mask = zcmpRegMask(rv32asm.CmPush(0xf, 0))
	want := uint32(1<<1 | 1<<8 | 1<<9)
	for r := 18; r <= 27; r++ {
		want |= 1 << r
	}
	if mask != want {
		t.Errorf("rlist 0xf mask: expected %#x, got %#x", want, mask)
	}

	// the compressed s aliasing: 0,1 -> s0,s1 (x8,x9); 2..7 -> s2..s7 (x18..)
	if zcmpSReg(0) != 8 || zcmpSReg(1) != 9 || zcmpSReg(2) != 18 || zcmpSReg(7) != 23 {
		t.Errorf("s mapping: got %d %d %d %d",
			zcmpSReg(0), zcmpSReg(1), zcmpSReg(2), zcmpSReg(7))
	}
}

// Anchor a few well-known encodings so the mask/match table can't drift.
func TestKnownEncodings(t *testing.T) {
	if got := rv32asm.Addi(rv32asm.A0, rv32asm.X0, 10); got != 0x00a00513 {
		t.Errorf("li a0, 10: expected 0x00a00513, got %#x", got)
	}
	if got := rv32asm.Add(rv32asm.A2, rv32asm.A0, rv32asm.A1); got != 0x00b50633 {
		t.Errorf("add a2, a0, a1: expected 0x00b50633, got %#x", got)
	}
	if got := rv32asm.Mul(rv32asm.A2, rv32asm.A0, rv32asm.A1); got != 0x02b50633 {
		t.Errorf("mul a2, a0, a1: expected 0x02b50633, got %#x", got)
	}
	if got := rv32asm.Ecall(); got != 0x00000073 {
		t.Errorf("ecall: got %#x", got)
	}
	if got := rv32asm.Mret(); got != 0x30200073 {
		t.Errorf("mret: got %#x", got)
	}
	if !encLrW.match(rv32asm.LrW(1, 2)) {
		t.Errorf("lr.w does not match its own encoding")
	}
	if !encScW.match(rv32asm.ScW(1, 2, 3)) {
		t.Errorf("sc.w does not match its own encoding")
	}
	if !encZip.match(rv32asm.Zip(1, 2)) || !encUnzip.match(rv32asm.Unzip(1, 2)) {
		t.Errorf("zip/unzip do not match their own encodings")
	}
	if !encRev8.match(rv32asm.Rev8(1, 2)) || !encBrev8.match(rv32asm.Brev8(1, 2)) {
		t.Errorf("rev8/brev8 do not match their own encodings")
	}
	if !encBextm.match(rv32asm.Bextm(1, 2, 3, 8)) {
		t.Errorf("bextm does not match its own encoding")
	}
	if !encBextmi.match(rv32asm.Bextmi(1, 2, 3, 8)) {
		t.Errorf("bextmi does not match its own encoding")
	}
	if !encCmPush.match(rv32asm.CmPush(0xf, 3)) {
		t.Errorf("cm.push does not match its own encoding")
	}
	if !encCmMva01s.match(rv32asm.CmMva01s(7, 7)) {
		t.Errorf("cm.mva01s does not match its own encoding")
	}
}
