package rv32asm

import (
	"encoding/binary"
	"testing"

	"github.com/rvlab/h3sim/internal/asm"
)

func TestEncodeRanges(t *testing.T) {
	if _, err := EncodeI(2048, 0, 0, 0, 0x13); err == nil {
		t.Errorf("I-type immediate 2048 accepted")
	}
	if _, err := EncodeI(-2049, 0, 0, 0, 0x13); err == nil {
		t.Errorf("I-type immediate -2049 accepted")
	}
	if _, err := EncodeB(3, 0, 0, 0, 0x63); err == nil {
		t.Errorf("odd branch offset accepted")
	}
	if _, err := EncodeJ(1<<20, 0, 0x6f); err == nil {
		t.Errorf("J-type offset 2^20 accepted")
	}
}

func TestKnownWords(t *testing.T) {
	cases := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"li a0, 10", Addi(A0, X0, 10), 0x00a00513},
		{"li t0, 0", Addi(T0, X0, 0), 0x00000293},
		{"add a2, a0, a1", Add(A2, A0, A1), 0x00b50633},
		{"sub a3, a0, a1", Sub(A3, A0, A1), 0x40b506b3},
		{"and a4, a0, a1", And(A4, A0, A1), 0x00b57733},
		{"or a5, a0, a1", Or(A5, A0, A1), 0x00b567b3},
		{"xor a6, a0, a1", Xor(A6, A0, A1), 0x00b54833},
		{"lui a0, 0x10000", Lui(A0, 0x10000), 0x10000537},
		{"sw zero, 0(t0)", Sw(X0, T0, 0), 0x0002a023},
		{"mul a2, a0, a1", Mul(A2, A0, A1), 0x02b50633},
		{"ecall", Ecall(), 0x00000073},
		{"ebreak", Ebreak(), 0x00100073},
		{"mret", Mret(), 0x30200073},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: expected %#08x, got %#08x", c.name, c.want, c.got)
		}
	}
}

func TestKnownCompressed(t *testing.T) {
	if got := CLi(A0, 5); got != 0x4515 {
		t.Errorf("c.li a0, 5: expected 0x4515, got %#x", got)
	}
	if got := CAddi(A0, 3); got != 0x050d {
		t.Errorf("c.addi a0, 3: expected 0x050d, got %#x", got)
	}
	if got := CMv(A1, A0); got != 0x85aa {
		t.Errorf("c.mv a1, a0: expected 0x85aa, got %#x", got)
	}
	if got := CEbreak(); got != 0x9002 {
		t.Errorf("c.ebreak: expected 0x9002, got %#x", got)
	}
}

func TestAssembleFragments(t *testing.T) {
	img, err := asm.Assemble(
		Words(Addi(A0, X0, 1), Addi(A1, X0, 2)),
		Half(uint16(CAddi(A0, 1))),
	)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(img) != 10 {
		t.Fatalf("image size: expected 10, got %d", len(img))
	}
	if binary.LittleEndian.Uint32(img[0:]) != Addi(A0, X0, 1) {
		t.Errorf("word 0 mismatch")
	}
	if binary.LittleEndian.Uint16(img[8:]) != uint16(CAddi(A0, 1)) {
		t.Errorf("trailing half mismatch")
	}
}

func TestLabels(t *testing.T) {
	img, err := asm.Assemble(
		asm.MarkLabel("start"),
		Word(Nop()),
		asm.MarkLabel("end"),
	)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(img) != 4 {
		t.Errorf("image size: expected 4, got %d", len(img))
	}
}
