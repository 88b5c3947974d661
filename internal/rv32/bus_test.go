package rv32

import (
	"errors"
	"testing"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b, err := NewBus(0, 4096)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	return b
}

func TestBusSubWordAccess(t *testing.T) {
	b := newTestBus(t)
	if err := b.Write32(0x100, 0x11223344); err != nil {
		t.Fatalf("Write32: %v", err)
	}

	// little-endian byte order inside the word
	wantBytes := []uint8{0x44, 0x33, 0x22, 0x11}
	for i, want := range wantBytes {
		got, err := b.Read8(0x100 + uint32(i))
		if err != nil {
			t.Fatalf("Read8: %v", err)
		}
		if got != want {
			t.Errorf("byte %d: expected %#x, got %#x", i, want, got)
		}
	}

	if v, _ := b.Read16(0x100); v != 0x3344 {
		t.Errorf("low half: expected 0x3344, got %#x", v)
	}
	if v, _ := b.Read16(0x102); v != 0x1122 {
		t.Errorf("high half: expected 0x1122, got %#x", v)
	}

	// sub-word writes merge into the containing word
	if err := b.Write8(0x101, 0xaa); err != nil {
		t.Fatalf("Write8: %v", err)
	}
	if err := b.Write16(0x102, 0xbbcc); err != nil {
		t.Fatalf("Write16: %v", err)
	}
	if v, _ := b.Read32(0x100); v != 0xbbccaa44 {
		t.Errorf("merged word: expected 0xbbccaa44, got %#x", v)
	}
}

func TestBusOutOfRange(t *testing.T) {
	b := newTestBus(t)
	if _, err := b.Read32(0x2000); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
	if err := b.Write8(0x2000, 1); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

// fixed-value device for mapping tests
type constDevice struct {
	val  uint32
	last uint32
}

func (d *constDevice) Size() uint32 { return 16 }

func (d *constDevice) Read(offset uint32, size int) (uint32, error) {
	return d.val + offset, nil
}

func (d *constDevice) Write(offset uint32, size int, value uint32) error {
	d.last = value
	return nil
}

func TestBusDeviceMapping(t *testing.T) {
	b := newTestBus(t)
	dev := &constDevice{val: 0x100}
	b.AddDevice(0x8000, dev)

	if v, err := b.Read32(0x8004); err != nil || v != 0x104 {
		t.Errorf("device read: expected 0x104, got %#x (%v)", v, err)
	}
	if err := b.Write32(0x8000, 0x42); err != nil {
		t.Fatalf("device write: %v", err)
	}
	if dev.last != 0x42 {
		t.Errorf("device write value: expected 0x42, got %#x", dev.last)
	}
	if _, err := b.Read32(0x8010); !errors.Is(err, ErrNoDevice) {
		t.Errorf("read past device: expected ErrNoDevice, got %v", err)
	}
}

func TestBusRAMPrecedence(t *testing.T) {
	b := newTestBus(t)
	b.AddDevice(0, &constDevice{val: 0xdead0000})
	if err := b.Write32(0, 7); err != nil {
		t.Fatalf("Write32: %v", err)
	}
	if v, _ := b.Read32(0); v != 7 {
		t.Errorf("RAM window must take precedence over devices, got %#x", v)
	}
}

func TestBusLoadBytes(t *testing.T) {
	b := newTestBus(t)
	if err := b.LoadBytes(2, []byte{0xaa, 0xbb, 0xcc}); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if v, _ := b.Read8(2); v != 0xaa {
		t.Errorf("byte 2: got %#x", v)
	}
	if v, _ := b.Read8(4); v != 0xcc {
		t.Errorf("byte 4: got %#x", v)
	}
}

func TestNewBusValidation(t *testing.T) {
	if _, err := NewBus(2, 4096); err == nil {
		t.Errorf("misaligned base accepted")
	}
	if _, err := NewBus(0, 0); err == nil {
		t.Errorf("zero size accepted")
	}
	if _, err := NewBus(0xfffff000, 0x2000); err == nil {
		t.Errorf("wrapping window accepted")
	}
}
