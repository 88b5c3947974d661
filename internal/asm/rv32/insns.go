package rv32asm

import "fmt"

// Named instruction builders. These return raw instruction words; immediates
// out of range panic, which is what a test wants.

// Base integer

func Addi(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b000, rd, 0x13)) }
func Slti(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b010, rd, 0x13)) }
func Sltiu(rd, rs1 uint32, imm int32) uint32 {
	return must(EncodeI(imm, rs1, 0b011, rd, 0x13))
}
func Xori(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b100, rd, 0x13)) }
func Ori(rd, rs1 uint32, imm int32) uint32  { return must(EncodeI(imm, rs1, 0b110, rd, 0x13)) }
func Andi(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b111, rd, 0x13)) }

func Slli(rd, rs1, shamt uint32) uint32 { return EncodeR(0x00, shamt, rs1, 0b001, rd, 0x13) }
func Srli(rd, rs1, shamt uint32) uint32 { return EncodeR(0x00, shamt, rs1, 0b101, rd, 0x13) }
func Srai(rd, rs1, shamt uint32) uint32 { return EncodeR(0x20, shamt, rs1, 0b101, rd, 0x13) }

func Add(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b000, rd, 0x33) }
func Sub(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x20, rs2, rs1, 0b000, rd, 0x33) }
func Sll(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b001, rd, 0x33) }
func Slt(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b010, rd, 0x33) }
func Sltu(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x00, rs2, rs1, 0b011, rd, 0x33) }
func Xor(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b100, rd, 0x33) }
func Srl(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b101, rd, 0x33) }
func Sra(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x20, rs2, rs1, 0b101, rd, 0x33) }
func Or(rd, rs1, rs2 uint32) uint32   { return EncodeR(0x00, rs2, rs1, 0b110, rd, 0x33) }
func And(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b111, rd, 0x33) }

func Lui(rd, imm20 uint32) uint32   { return EncodeU(imm20, rd, 0x37) }
func Auipc(rd, imm20 uint32) uint32 { return EncodeU(imm20, rd, 0x17) }

func Jal(rd uint32, offset int32) uint32 { return must(EncodeJ(offset, rd, 0x6f)) }
func Jalr(rd, rs1 uint32, imm int32) uint32 {
	return must(EncodeI(imm, rs1, 0b000, rd, 0x67))
}

func Beq(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b000, 0x63))
}
func Bne(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b001, 0x63))
}
func Blt(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b100, 0x63))
}
func Bge(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b101, 0x63))
}
func Bltu(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b110, 0x63))
}
func Bgeu(rs1, rs2 uint32, offset int32) uint32 {
	return must(EncodeB(offset, rs2, rs1, 0b111, 0x63))
}

func Lb(rd, rs1 uint32, imm int32) uint32  { return must(EncodeI(imm, rs1, 0b000, rd, 0x03)) }
func Lh(rd, rs1 uint32, imm int32) uint32  { return must(EncodeI(imm, rs1, 0b001, rd, 0x03)) }
func Lw(rd, rs1 uint32, imm int32) uint32  { return must(EncodeI(imm, rs1, 0b010, rd, 0x03)) }
func Lbu(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b100, rd, 0x03)) }
func Lhu(rd, rs1 uint32, imm int32) uint32 { return must(EncodeI(imm, rs1, 0b101, rd, 0x03)) }

func Sb(rs2, rs1 uint32, imm int32) uint32 { return must(EncodeS(imm, rs2, rs1, 0b000, 0x23)) }
func Sh(rs2, rs1 uint32, imm int32) uint32 { return must(EncodeS(imm, rs2, rs1, 0b001, 0x23)) }
func Sw(rs2, rs1 uint32, imm int32) uint32 { return must(EncodeS(imm, rs2, rs1, 0b010, 0x23)) }

// M extension

func Mul(rd, rs1, rs2 uint32) uint32    { return EncodeR(0x01, rs2, rs1, 0b000, rd, 0x33) }
func Mulh(rd, rs1, rs2 uint32) uint32   { return EncodeR(0x01, rs2, rs1, 0b001, rd, 0x33) }
func Mulhsu(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x01, rs2, rs1, 0b010, rd, 0x33) }
func Mulhu(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x01, rs2, rs1, 0b011, rd, 0x33) }
func Div(rd, rs1, rs2 uint32) uint32    { return EncodeR(0x01, rs2, rs1, 0b100, rd, 0x33) }
func Divu(rd, rs1, rs2 uint32) uint32   { return EncodeR(0x01, rs2, rs1, 0b101, rd, 0x33) }
func Rem(rd, rs1, rs2 uint32) uint32    { return EncodeR(0x01, rs2, rs1, 0b110, rd, 0x33) }
func Remu(rd, rs1, rs2 uint32) uint32   { return EncodeR(0x01, rs2, rs1, 0b111, rd, 0x33) }

// Bit manipulation

func Bclr(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x24, rs2, rs1, 0b001, rd, 0x33) }
func Bext(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x24, rs2, rs1, 0b101, rd, 0x33) }
func Binv(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x34, rs2, rs1, 0b001, rd, 0x33) }
func Bset(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x14, rs2, rs1, 0b001, rd, 0x33) }

func Bclri(rd, rs1, shamt uint32) uint32 { return EncodeR(0x24, shamt, rs1, 0b001, rd, 0x13) }
func Bexti(rd, rs1, shamt uint32) uint32 { return EncodeR(0x24, shamt, rs1, 0b101, rd, 0x13) }
func Binvi(rd, rs1, shamt uint32) uint32 { return EncodeR(0x34, shamt, rs1, 0b001, rd, 0x13) }
func Bseti(rd, rs1, shamt uint32) uint32 { return EncodeR(0x14, shamt, rs1, 0b001, rd, 0x13) }

func Sh1add(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x10, rs2, rs1, 0b010, rd, 0x33) }
func Sh2add(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x10, rs2, rs1, 0b100, rd, 0x33) }
func Sh3add(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x10, rs2, rs1, 0b110, rd, 0x33) }

func Min(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x05, rs2, rs1, 0b100, rd, 0x33) }
func Minu(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x05, rs2, rs1, 0b101, rd, 0x33) }
func Max(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x05, rs2, rs1, 0b110, rd, 0x33) }
func Maxu(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x05, rs2, rs1, 0b111, rd, 0x33) }

func Ror(rd, rs1, rs2 uint32) uint32    { return EncodeR(0x30, rs2, rs1, 0b101, rd, 0x33) }
func Rol(rd, rs1, rs2 uint32) uint32    { return EncodeR(0x30, rs2, rs1, 0b001, rd, 0x33) }
func Rori(rd, rs1, shamt uint32) uint32 { return EncodeR(0x30, shamt, rs1, 0b101, rd, 0x13) }

func Andn(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x20, rs2, rs1, 0b111, rd, 0x33) }
func Orn(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x20, rs2, rs1, 0b110, rd, 0x33) }
func Xnor(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x20, rs2, rs1, 0b100, rd, 0x33) }

func Pack(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x04, rs2, rs1, 0b100, rd, 0x33) }
func Packh(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x04, rs2, rs1, 0b111, rd, 0x33) }

func Clmul(rd, rs1, rs2 uint32) uint32  { return EncodeR(0x05, rs2, rs1, 0b001, rd, 0x33) }
func Clmulr(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x05, rs2, rs1, 0b010, rd, 0x33) }
func Clmulh(rd, rs1, rs2 uint32) uint32 { return EncodeR(0x05, rs2, rs1, 0b011, rd, 0x33) }

func Clz(rd, rs1 uint32) uint32   { return EncodeR(0x30, 0x00, rs1, 0b001, rd, 0x13) }
func Ctz(rd, rs1 uint32) uint32   { return EncodeR(0x30, 0x01, rs1, 0b001, rd, 0x13) }
func Cpop(rd, rs1 uint32) uint32  { return EncodeR(0x30, 0x02, rs1, 0b001, rd, 0x13) }
func SextB(rd, rs1 uint32) uint32 { return EncodeR(0x30, 0x04, rs1, 0b001, rd, 0x13) }
func SextH(rd, rs1 uint32) uint32 { return EncodeR(0x30, 0x05, rs1, 0b001, rd, 0x13) }
func Zip(rd, rs1 uint32) uint32   { return EncodeR(0x04, 0x0f, rs1, 0b001, rd, 0x13) }
func Unzip(rd, rs1 uint32) uint32 { return EncodeR(0x04, 0x0f, rs1, 0b101, rd, 0x13) }
func Brev8(rd, rs1 uint32) uint32 { return EncodeR(0x34, 0x07, rs1, 0b101, rd, 0x13) }
func Rev8(rd, rs1 uint32) uint32  { return EncodeR(0x34, 0x18, rs1, 0b101, rd, 0x13) }
func OrcB(rd, rs1 uint32) uint32  { return EncodeR(0x14, 0x07, rs1, 0b101, rd, 0x13) }

// Custom bit-extract-multiple: extract size bits (1-8) of rs1 starting at
// the bit index in rs2 (or the immediate shamt).
func Bextm(rd, rs1, rs2, size uint32) uint32 {
	return (size-1)&0x7<<26 | EncodeR(0, rs2, rs1, 0b000, rd, 0x0b)
}
func Bextmi(rd, rs1, shamt, size uint32) uint32 {
	return (size-1)&0x7<<26 | EncodeR(0, shamt, rs1, 0b100, rd, 0x0b)
}

// A extension

func LrW(rd, rs1 uint32) uint32      { return EncodeR(0x08, 0, rs1, 0b010, rd, 0x2f) }
func ScW(rd, rs2, rs1 uint32) uint32 { return EncodeR(0x0c, rs2, rs1, 0b010, rd, 0x2f) }

func AmoswapW(rd, rs2, rs1 uint32) uint32 { return EncodeR(0x04, rs2, rs1, 0b010, rd, 0x2f) }
func AmoaddW(rd, rs2, rs1 uint32) uint32  { return EncodeR(0x00, rs2, rs1, 0b010, rd, 0x2f) }
func AmoxorW(rd, rs2, rs1 uint32) uint32  { return EncodeR(0x10, rs2, rs1, 0b010, rd, 0x2f) }
func AmoandW(rd, rs2, rs1 uint32) uint32  { return EncodeR(0x30, rs2, rs1, 0b010, rd, 0x2f) }
func AmoorW(rd, rs2, rs1 uint32) uint32   { return EncodeR(0x20, rs2, rs1, 0b010, rd, 0x2f) }
func AmominW(rd, rs2, rs1 uint32) uint32  { return EncodeR(0x40, rs2, rs1, 0b010, rd, 0x2f) }
func AmomaxW(rd, rs2, rs1 uint32) uint32  { return EncodeR(0x50, rs2, rs1, 0b010, rd, 0x2f) }
func AmominuW(rd, rs2, rs1 uint32) uint32 { return EncodeR(0x60, rs2, rs1, 0b010, rd, 0x2f) }
func AmomaxuW(rd, rs2, rs1 uint32) uint32 { return EncodeR(0x70, rs2, rs1, 0b010, rd, 0x2f) }

// System

func Csrrw(rd, csr, rs1 uint32) uint32  { return csr<<20 | rs1<<15 | 0b001<<12 | rd<<7 | 0x73 }
func Csrrs(rd, csr, rs1 uint32) uint32  { return csr<<20 | rs1<<15 | 0b010<<12 | rd<<7 | 0x73 }
func Csrrc(rd, csr, rs1 uint32) uint32  { return csr<<20 | rs1<<15 | 0b011<<12 | rd<<7 | 0x73 }
func Csrrwi(rd, csr, imm uint32) uint32 { return csr<<20 | imm&0x1f<<15 | 0b101<<12 | rd<<7 | 0x73 }
func Csrrsi(rd, csr, imm uint32) uint32 { return csr<<20 | imm&0x1f<<15 | 0b110<<12 | rd<<7 | 0x73 }
func Csrrci(rd, csr, imm uint32) uint32 { return csr<<20 | imm&0x1f<<15 | 0b111<<12 | rd<<7 | 0x73 }

func Ecall() uint32  { return 0x00000073 }
func Ebreak() uint32 { return 0x00100073 }
func Mret() uint32   { return 0x30200073 }

// Nop is the canonical addi x0, x0, 0.
func Nop() uint32 { return Addi(X0, X0, 0) }

// Compressed

func CAddi(rd uint32, imm int32) uint32 {
	return ciEncode(0b000, rd, imm, 0b01)
}

func CLi(rd uint32, imm int32) uint32 {
	return ciEncode(0b010, rd, imm, 0b01)
}

func CMv(rd, rs2 uint32) uint32 { return 0b100<<13 | rd<<7 | rs2<<2 | 0b10 }
func CAdd(rd, rs2 uint32) uint32 {
	return 0b100<<13 | 1<<12 | rd<<7 | rs2<<2 | 0b10
}
func CJr(rs1 uint32) uint32   { return 0b100<<13 | rs1<<7 | 0b10 }
func CJalr(rs1 uint32) uint32 { return 0b100<<13 | 1<<12 | rs1<<7 | 0b10 }
func CEbreak() uint32         { return 0x9002 }

func ciEncode(funct3, rd uint32, imm int32, quadrant uint32) uint32 {
	if imm < -32 || imm > 31 {
		panic(fmt.Sprintf("rv32asm: immediate %d out of range for CI-type", imm))
	}
	uimm := uint32(imm)
	return funct3<<13 | uimm>>5&0x1<<12 | rd<<7 | uimm&0x1f<<2 | quadrant
}

// Zcmp. The rlist field is the raw 4-bit encoding (4 = {ra}, 15 = full set);
// spimm is the extra stack adjustment in units of 16 bytes (0-3).

func CmPush(rlist, spimm uint32) uint32 { return 0xb802 | rlist&0xf<<4 | spimm&0x3<<2 }
func CmPop(rlist, spimm uint32) uint32  { return 0xba02 | rlist&0xf<<4 | spimm&0x3<<2 }
func CmPopret(rlist, spimm uint32) uint32 {
	return 0xbe02 | rlist&0xf<<4 | spimm&0x3<<2
}
func CmPopretz(rlist, spimm uint32) uint32 {
	return 0xbc02 | rlist&0xf<<4 | spimm&0x3<<2
}

func CmMvsa01(r1s, r2s uint32) uint32 { return 0xac22 | r1s&0x7<<7 | r2s&0x7<<2 }
func CmMva01s(r1s, r2s uint32) uint32 { return 0xac62 | r1s&0x7<<7 | r2s&0x7<<2 }
