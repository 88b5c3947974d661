// Package rv32asm encodes RV32 instructions for test programs: the base
// formats, the bit-manipulation and atomic encodings the core implements,
// and the 16-bit compressed forms including Zcmp.
package rv32asm

import (
	"encoding/binary"
	"fmt"

	"github.com/rvlab/h3sim/internal/asm"
)

// Architectural register numbers under their ABI names.
const (
	X0, Zero = 0, 0
	RA       = 1
	SP       = 2
	GP       = 3
	TP       = 4
	T0       = 5
	T1       = 6
	T2       = 7
	S0       = 8
	S1       = 9
	A0       = 10
	A1       = 11
	A2       = 12
	A3       = 13
	A4       = 14
	A5       = 15
	A6       = 16
	A7       = 17
	S2       = 18
	S3       = 19
	S4       = 20
	S5       = 21
	S6       = 22
	S7       = 23
	S8       = 24
	S9       = 25
	S10      = 26
	S11      = 27
	T3       = 28
	T4       = 29
	T5       = 30
	T6       = 31
)

// EncodeR builds an R-type instruction.
func EncodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// EncodeI builds an I-type instruction.
func EncodeI(imm int32, rs1, funct3, rd, opcode uint32) (uint32, error) {
	if imm < -2048 || imm > 2047 {
		return 0, fmt.Errorf("rv32asm: immediate %d out of range for I-type", imm)
	}
	return uint32(imm)&0xfff<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode, nil
}

// EncodeS builds an S-type instruction.
func EncodeS(imm int32, rs2, rs1, funct3, opcode uint32) (uint32, error) {
	if imm < -2048 || imm > 2047 {
		return 0, fmt.Errorf("rv32asm: immediate %d out of range for S-type", imm)
	}
	uimm := uint32(imm) & 0xfff
	return uimm>>5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | uimm&0x1f<<7 | opcode, nil
}

// EncodeB builds a B-type instruction. The offset is relative and must be
// even.
func EncodeB(offset int32, rs2, rs1, funct3, opcode uint32) (uint32, error) {
	if offset < -4096 || offset > 4094 || offset&1 != 0 {
		return 0, fmt.Errorf("rv32asm: branch offset %d out of range", offset)
	}
	uoff := uint32(offset)
	return uoff>>12&0x1<<31 | uoff>>5&0x3f<<25 | rs2<<20 | rs1<<15 |
		funct3<<12 | uoff>>1&0xf<<8 | uoff>>11&0x1<<7 | opcode, nil
}

// EncodeU builds a U-type instruction from the top 20 immediate bits.
func EncodeU(imm20 uint32, rd, opcode uint32) uint32 {
	return imm20&0xfffff<<12 | rd<<7 | opcode
}

// EncodeJ builds a J-type instruction. The offset is relative and must be
// even.
func EncodeJ(offset int32, rd, opcode uint32) (uint32, error) {
	if offset < -(1<<20) || offset >= 1<<20 || offset&1 != 0 {
		return 0, fmt.Errorf("rv32asm: jump offset %d out of range", offset)
	}
	uoff := uint32(offset)
	return uoff>>20&0x1<<31 | uoff>>1&0x3ff<<21 | uoff>>11&0x1<<20 |
		uoff>>12&0xff<<12 | rd<<7 | opcode, nil
}

func must(insn uint32, err error) uint32 {
	if err != nil {
		panic(err)
	}
	return insn
}

// Word is a fragment emitting one raw 32-bit instruction.
type Word uint32

func (w Word) Emit(ctx asm.Context) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(w))
	ctx.EmitBytes(buf[:])
	return nil
}

// Half is a fragment emitting one raw 16-bit instruction.
type Half uint16

func (h Half) Emit(ctx asm.Context) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(h))
	ctx.EmitBytes(buf[:])
	return nil
}

// Words wraps a slice of raw instructions as a fragment group.
func Words(insns ...uint32) asm.Fragment {
	g := make(asm.Group, len(insns))
	for i, insn := range insns {
		g[i] = Word(insn)
	}
	return g
}
