// Package platform describes the simulated platform: RAM window, I/O base,
// cycle budget and post-run memory dumps. A platform file is YAML; anything
// left unset keeps its default.
package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the testbench platform.
const (
	DefaultRAMBase           uint32 = 0x00000000
	DefaultRAMSizeKiB        uint32 = 16384
	DefaultIOBase            uint32 = 0x80000000
	DefaultResetVectorOffset uint32 = 0x40
	DefaultMaxCycles         int64  = 100000
)

// RAMConfig describes the flat RAM window.
type RAMConfig struct {
	Base    uint32 `yaml:"base"`
	SizeKiB uint32 `yaml:"size_kib"`
}

// IOConfig describes the testbench I/O region.
type IOConfig struct {
	Base uint32 `yaml:"base"`
}

// DumpRange is a half-open byte range printed after execution.
type DumpRange struct {
	Start uint32 `yaml:"start"`
	End   uint32 `yaml:"end"`
}

// Config is the full platform description.
type Config struct {
	RAM               RAMConfig   `yaml:"ram"`
	IO                IOConfig    `yaml:"io"`
	ResetVectorOffset uint32      `yaml:"reset_vector_offset"`
	MaxCycles         int64       `yaml:"max_cycles"`
	Trace             bool        `yaml:"trace"`
	Dump              []DumpRange `yaml:"dump,omitempty"`
}

// Default returns the stock testbench platform: 16 MiB of RAM at address 0,
// I/O at 0x80000000, execution starting at RAM offset 0x40, a 100000 cycle
// budget.
func Default() Config {
	return Config{
		RAM: RAMConfig{
			Base:    DefaultRAMBase,
			SizeKiB: DefaultRAMSizeKiB,
		},
		IO:                IOConfig{Base: DefaultIOBase},
		ResetVectorOffset: DefaultResetVectorOffset,
		MaxCycles:         DefaultMaxCycles,
	}
}

// Load reads a platform file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read platform file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse platform file %q: %w", path, err)
	}
	if cfg.RAM.SizeKiB == 0 {
		cfg.RAM.SizeKiB = DefaultRAMSizeKiB
	}
	if cfg.MaxCycles == 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RAMSize returns the RAM window size in bytes.
func (c *Config) RAMSize() uint32 {
	return c.RAM.SizeKiB * 1024
}

// ResetVector returns the absolute address execution starts at.
func (c *Config) ResetVector() uint32 {
	return c.RAM.Base + c.ResetVectorOffset
}

// Validate checks the platform for consistency.
func (c *Config) Validate() error {
	if c.RAM.Base&3 != 0 {
		return fmt.Errorf("RAM base 0x%08x is not word aligned", c.RAM.Base)
	}
	if c.RAM.SizeKiB == 0 {
		return fmt.Errorf("RAM size is zero")
	}
	if c.ResetVectorOffset&1 != 0 {
		return fmt.Errorf("reset vector offset 0x%x is odd", c.ResetVectorOffset)
	}
	if c.ResetVectorOffset >= c.RAMSize() {
		return fmt.Errorf("reset vector offset 0x%x is outside RAM (%d bytes)",
			c.ResetVectorOffset, c.RAMSize())
	}
	if c.MaxCycles <= 0 {
		return fmt.Errorf("cycle budget %d is not positive", c.MaxCycles)
	}
	for _, d := range c.Dump {
		if d.End < d.Start {
			return fmt.Errorf("dump range 0x%08x..0x%08x is reversed", d.Start, d.End)
		}
	}
	return nil
}
