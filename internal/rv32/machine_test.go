package rv32

import (
	"context"
	"errors"
	"testing"

	rv32asm "github.com/rvlab/h3sim/internal/asm/rv32"
)

func TestMachineRunUntilHalt(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m,
		rv32asm.Addi(rv32asm.A0, rv32asm.X0, 42),
		rv32asm.Lui(rv32asm.A1, 0x80000),
		rv32asm.Sw(rv32asm.A0, rv32asm.A1, 0),
	)
	steps, err := m.Run(context.Background(), 100)

	var halt *HaltError
	if !errors.As(err, &halt) {
		t.Fatalf("expected HaltError, got %v", err)
	}
	if halt.Code != 42 {
		t.Errorf("exit code: expected 42, got %d", halt.Code)
	}
	if steps != 3 {
		t.Errorf("steps: expected 3, got %d", steps)
	}
}

func TestMachineRunExhaustsBudget(t *testing.T) {
	m := newTestMachine(t)
	base := m.Core.PC
	loadProgram(t, m,
		rv32asm.Jal(rv32asm.X0, 0), // spin
	)
	steps, err := m.Run(context.Background(), 1000)
	if err != nil {
		t.Fatalf("expected clean timeout, got %v", err)
	}
	if steps != 1000 {
		t.Errorf("steps: expected 1000, got %d", steps)
	}
	if m.Core.PC != base {
		t.Errorf("pc: expected %#x, got %#x", base, m.Core.PC)
	}
	if cyc, _ := m.Core.CSR.Read(CSRMcycle); cyc != 1000 {
		t.Errorf("mcycle: expected 1000, got %d", cyc)
	}
}

func TestMachineRunCancel(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m,
		rv32asm.Jal(rv32asm.X0, 0),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Run(ctx, 1<<30); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadBinaryTooLarge(t *testing.T) {
	m, err := NewMachine(0, 4096)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if err := m.LoadBinary(make([]byte, 8192)); err == nil {
		t.Errorf("oversized binary accepted")
	}
	if err := m.LoadBinary(make([]byte, 4096)); err != nil {
		t.Errorf("exact-size binary rejected: %v", err)
	}
}

func TestMachineResetState(t *testing.T) {
	m, err := NewMachine(0x0, 1<<20)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if m.Core.PC != ResetVectorOffset {
		t.Errorf("reset vector: expected %#x, got %#x", ResetVectorOffset, m.Core.PC)
	}
	for i, v := range m.Core.X {
		if v != 0 {
			t.Errorf("x%d: expected 0 at reset, got %#x", i, v)
		}
	}
	if m.Core.CSR.Priv() != PrivMachine {
		t.Errorf("reset privilege: expected M, got %d", m.Core.CSR.Priv())
	}
}
