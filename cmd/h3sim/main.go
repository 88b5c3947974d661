// Command h3sim is the software testbench: it loads a flat binary into RAM,
// runs the hart until the guest writes the exit port or the cycle budget is
// exhausted, then prints any requested memory dumps.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/rvlab/h3sim/internal/platform"
	"github.com/rvlab/h3sim/internal/rv32"
	"github.com/rvlab/h3sim/internal/tbio"
)

// dumpFlag collects repeatable --dump START,END ranges.
type dumpFlag struct {
	ranges *[]platform.DumpRange
}

func (d dumpFlag) String() string { return "" }

func (d dumpFlag) Set(value string) error {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return fmt.Errorf("expected START,END, got %q", value)
	}
	start, err := strconv.ParseUint(fields[0], 0, 32)
	if err != nil {
		return fmt.Errorf("bad dump start %q: %w", fields[0], err)
	}
	end, err := strconv.ParseUint(fields[1], 0, 32)
	if err != nil {
		return fmt.Errorf("bad dump end %q: %w", fields[1], err)
	}
	if end < start {
		return fmt.Errorf("dump range %q is reversed", value)
	}
	*d.ranges = append(*d.ranges, platform.DumpRange{Start: uint32(start), End: uint32(end)})
	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(); err != nil {
		var exit *exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		slog.Error("testbench failed", "err", err)
		os.Exit(255)
	}
}

// exitCodeError carries the process exit code out of run.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func run() error {
	var dumpRanges []platform.DumpRange

	fs := flag.NewFlagSet("h3sim", flag.ContinueOnError)
	binPath := fs.String("bin", "", "flat binary file loaded to offset 0 in RAM")
	fs.String("vcd", "", "accepted for tool compatibility, ignored")
	platformPath := fs.String("platform", "", "YAML platform description")
	cycles := fs.Int64("cycles", platform.DefaultMaxCycles, "maximum number of cycles to run before exiting")
	memsize := fs.Uint("memsize", uint(platform.DefaultRAMSizeKiB), "memory size in units of 1024 bytes")
	resetvec := fs.Uint("resetvec", uint(platform.DefaultResetVectorOffset), "reset vector as an offset from the RAM base")
	trace := fs.Bool("trace", false, "print per-step execution tracing info")
	cpuret := fs.Bool("cpuret", false, "propagate the guest's exit code as the process exit code")
	progress := fs.Bool("progress", false, "show a progress bar over the cycle budget")
	fs.Var(dumpFlag{&dumpRanges}, "dump", "memory range START,END to print after execution (repeatable)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return &exitCodeError{code: 255}
	}

	cfg := platform.Default()
	if *platformPath != "" {
		var err error
		cfg, err = platform.Load(*platformPath)
		if err != nil {
			return err
		}
	}

	// Flags given on the command line win over the platform file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cycles":
			cfg.MaxCycles = *cycles
		case "memsize":
			cfg.RAM.SizeKiB = uint32(*memsize)
		case "resetvec":
			cfg.ResetVectorOffset = uint32(*resetvec)
		case "trace":
			cfg.Trace = *trace
		}
	})
	cfg.Dump = append(cfg.Dump, dumpRanges...)
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := rv32.NewMachine(cfg.RAM.Base, cfg.RAMSize())
	if err != nil {
		return err
	}
	m.SetPC(cfg.ResetVector())
	m.AddDevice(cfg.IO.Base, &tbio.Device{Out: os.Stdout})
	if cfg.Trace {
		m.Core.Tracer = &rv32.Tracer{W: os.Stdout}
	}

	if *binPath != "" {
		data, err := os.ReadFile(*binPath)
		if err != nil {
			return fmt.Errorf("read binary: %w", err)
		}
		if err := m.LoadBinary(data); err != nil {
			return err
		}
		slog.Info("loaded binary", "path", *binPath, "bytes", len(data))
	}

	ran, runErr := drive(m, cfg, *progress)

	var halt *rv32.HaltError
	switch {
	case runErr == nil:
		// clean timeout
	case errors.As(runErr, &halt):
		fmt.Printf("CPU requested halt. Exit code %d\n", int32(halt.Code))
		fmt.Printf("Ran for %d cycles\n", ran)
	default:
		return runErr
	}

	for _, r := range cfg.Dump {
		fmt.Printf("Dumping memory from %08x to %08x:\n", r.Start, r.End)
		for i := uint32(0); i < r.End-r.Start; i++ {
			v, err := m.Bus.Read8(r.Start + i)
			if err != nil {
				return fmt.Errorf("dump read at 0x%08x: %w", r.Start+i, err)
			}
			sep := byte(' ')
			if i%16 == 15 {
				sep = '\n'
			}
			fmt.Printf("%02x%c", v, sep)
		}
		fmt.Printf("\n")
	}

	if *cpuret {
		if halt != nil {
			return &exitCodeError{code: int(halt.Code & 0xff)}
		}
		return &exitCodeError{code: 255}
	}
	return nil
}

// drive runs the machine for the configured budget, in chunks so a progress
// bar can keep up without touching the hot loop.
func drive(m *rv32.Machine, cfg platform.Config, progress bool) (int64, error) {
	ctx := context.Background()

	var bar *progressbar.ProgressBar
	if progress && !cfg.Trace && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.Default(cfg.MaxCycles, "cycles")
		defer bar.Close()
	}

	const chunk = int64(1 << 16)
	var ran int64
	for ran < cfg.MaxCycles {
		n := min(chunk, cfg.MaxCycles-ran)
		steps, err := m.Run(ctx, n)
		ran += steps
		if bar != nil {
			bar.Add64(steps)
		}
		if err != nil {
			return ran, err
		}
	}
	return ran, nil
}
