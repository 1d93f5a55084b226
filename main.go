//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/image/colornames"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
	"gochip8/pkg/devices"
	"gochip8/pkg/utils"
)

// runOptions configures a headless run.
type runOptions struct {
	steps      uint64
	hz         int
	keys       []uint8
	seed       uint64
	trace      io.Writer
	screenshot string
	memviz     string
}

// runResult is what a headless run leaves behind.
type runResult struct {
	emu     *chip8.Emulator
	display *devices.Headless
	err     error
}

// snapshot is the register file dumped by -memviz. Memory and the bitmap are
// left out to keep the graph readable.
type snapshot struct {
	PC    uint16
	I     uint16
	SP    int16
	V     [chip8.RegisterCount]byte
	Delay byte
	Sound byte
	Stack []uint16
}

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output ROM file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled ROM headless")
	runBinPath := flag.String("run-bin", "", "run an existing ROM headless")
	disPath := flag.String("dis", "", "print a disassembly of a ROM")
	steps := flag.Uint64("steps", 1000, "number of instructions to execute")
	hz := flag.Int("hz", 0, "instruction rate for the headless run (0 runs unpaced)")
	keys := flag.String("keys", "", "comma separated hex keys returned to FX0A, in order")
	seed := flag.Uint64("seed", 0, "random seed for RND (0 picks one)")
	trace := flag.Bool("trace", false, "log every executed instruction to stderr")
	screenshot := flag.String("screenshot", "", "write the final display to a PNG file")
	memvizPath := flag.String("memviz", "", "write a Graphviz dump of the final registers")
	flag.Parse()

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	if *disPath != "" {
		rom, err := utils.ReadROM(*disPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read ROM %q: %v\n", *disPath, err)
			os.Exit(1)
		}
		for _, line := range asm.DisassembleROM(rom) {
			fmt.Println(line)
		}
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = utils.ReplaceExt(*inPath, ".ch8")
		}

		if err := os.WriteFile(output, code, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write ROM file %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram && *disPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, -run-bin <file> to run an existing ROM or -dis <file> to disassemble one")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	scripted, err := parseKeys(*keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -keys: %v\n", err)
		os.Exit(2)
	}

	opts := runOptions{
		steps:      *steps,
		hz:         *hz,
		keys:       scripted,
		seed:       *seed,
		screenshot: *screenshot,
		memviz:     *memvizPath,
	}
	if *trace {
		opts.trace = os.Stderr
	}

	res, err := runBinary(runTarget, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
	printSummary(os.Stdout, runTarget, res)
	if res.err != nil {
		os.Exit(1)
	}
}

// parseKeys reads a list such as "1,a,F".
func parseKeys(s string) ([]uint8, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var keys []uint8
	for _, field := range strings.Split(s, ",") {
		k, err := strconv.ParseUint(strings.TrimSpace(field), 16, 8)
		if err != nil || k > 0xF {
			return nil, fmt.Errorf("%q is not a key 0-F", field)
		}
		keys = append(keys, uint8(k))
	}
	return keys, nil
}

// runBinary loads a ROM and executes it headless. Failures to set up the run
// are returned as err; a fault inside the program is reported in
// runResult.err so the caller can still print the final state.
func runBinary(path string, opts runOptions) (*runResult, error) {
	rom, err := utils.ReadROM(path)
	if err != nil {
		return nil, err
	}

	var machineOpts []chip8.Option
	if opts.seed != 0 {
		machineOpts = append(machineOpts, chip8.WithRand(rand.New(rand.NewPCG(opts.seed, opts.seed))))
	}
	m := chip8.NewMachine(machineOpts...)
	if err := m.LoadROM(rom); err != nil {
		return nil, err
	}

	var emuOpts []chip8.EmulatorOption
	if opts.hz > 0 {
		emuOpts = append(emuOpts, chip8.WithPacer(clock.New(opts.hz)))
	}
	if opts.trace != nil {
		logger := slog.New(slog.NewTextHandler(opts.trace, &slog.HandlerOptions{Level: slog.LevelDebug}))
		emuOpts = append(emuOpts, chip8.WithLogger(logger), chip8.WithDisassembler(asm.Disassemble))
	}

	display := devices.NewHeadless()
	emu := chip8.New(m, devices.NewMockInput(opts.keys...), display, emuOpts...)

	res := &runResult{emu: emu, display: display}
	res.err = emu.RunSteps(context.Background(), opts.steps)

	if opts.screenshot != "" {
		if err := m.SaveScreenshot(opts.screenshot, colornames.Limegreen, colornames.Black); err != nil {
			return res, fmt.Errorf("screenshot: %w", err)
		}
	}
	if opts.memviz != "" {
		if err := writeMemviz(opts.memviz, m); err != nil {
			return res, fmt.Errorf("memviz: %w", err)
		}
	}
	return res, nil
}

func takeSnapshot(m *chip8.Machine) snapshot {
	s := snapshot{
		PC:    m.PC(),
		I:     m.I(),
		SP:    m.StackPointer(),
		V:     m.Registers(),
		Delay: m.DelayTimer(),
		Sound: m.SoundTimer(),
	}
	for level := 0; level < m.StackDepth(); level++ {
		raw := m.MemorySlice(chip8.StackAddress+uint16(level*2), 2)
		s.Stack = append(s.Stack, uint16(raw[0])<<8|uint16(raw[1]))
	}
	return s
}

func writeMemviz(path string, m *chip8.Machine) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	s := takeSnapshot(m)
	memviz.Map(f, &s)
	return f.Close()
}

func printSummary(w io.Writer, path string, res *runResult) {
	m := res.emu.Machine()
	status := "complete"
	if res.err != nil {
		status = "stopped: " + res.err.Error()
	}

	fmt.Fprintf(w, "run %s (%s): steps=%d frames=%d lit=%d\n",
		status, path, res.emu.Steps(), res.display.Frames(), res.display.Lit())
	fmt.Fprintf(w, "PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d\n",
		m.PC(), m.I(), m.StackPointer(), m.DelayTimer(), m.SoundTimer())

	v := m.Registers()
	var b strings.Builder
	for i, val := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "V%X=%02X", i, val)
	}
	fmt.Fprintln(w, b.String())
}
