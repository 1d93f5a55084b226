package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/colornames"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
	"gochip8/pkg/devices"
	"gochip8/pkg/utils"
)

// keymap lays the hex keypad over the left side of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keymap = map[ebiten.Key]uint8{
	ebiten.Key1: 0x1, ebiten.Key2: 0x2, ebiten.Key3: 0x3, ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

type Game struct {
	session *devices.Session
	on, off color.Color
	scale   int

	screenImg *ebiten.Image // reused 64×32 bitmap canvas
	pixels    []byte
}

func newGame(s *devices.Session, scale int, on, off color.Color) *Game {
	if scale < 1 {
		scale = 1
	}
	return &Game{
		session: s,
		on:      on,
		off:     off,
		scale:   scale,
		pixels:  make([]byte, chip8.DisplaySize*4),
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for key, hex := range keymap {
		if inpututil.IsKeyJustPressed(key) {
			g.session.Keys.Press(hex)
		}
		if inpututil.IsKeyJustReleased(key) {
			g.session.Keys.Release(hex)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}

	chip8.FillRGBA(g.pixels, g.session.Screen.Frame(), g.on, g.off)
	g.screenImg.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screenImg, op)

	select {
	case <-g.session.Done():
		if err := g.session.Err(); err != nil {
			ebitenutil.DebugPrint(screen, "halted:\n"+err.Error())
		}
	default:
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.DisplayWidth * g.scale, chip8.DisplayHeight * g.scale
}

// startStatsview serves runtime charts on addr until the returned stop
// function is called.
func startStatsview(addr string) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	log.Printf("stats server available at http://%s/debug/statsview", addr)
	return mgr.Stop
}

func main() {
	hz := flag.Int("hz", clock.DefaultHz, "instructions per second")
	scale := flag.Int("scale", 10, "window pixels per CHIP-8 pixel")
	trace := flag.Bool("trace", false, "log every executed instruction to stderr")
	statsAddr := flag.String("statsview", "", "serve runtime statistics on this address, e.g. localhost:18066")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] rom.ch8")
		flag.PrintDefaults()
		os.Exit(2)
	}
	romPath := flag.Arg(0)

	rom, err := utils.ReadROM(romPath)
	if err != nil {
		log.Fatalf("Failed to read ROM: %v", err)
	}

	var opts []chip8.EmulatorOption
	if *trace {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, chip8.WithLogger(logger), chip8.WithDisassembler(asm.Disassemble))
	}

	session, err := devices.NewSession(rom, *hz, opts...)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	if *statsAddr != "" {
		stop := startStatsview(*statsAddr)
		defer stop()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(chip8.DisplayWidth*(*scale), chip8.DisplayHeight*(*scale))
	ebiten.SetWindowTitle("gochip8 - " + utils.ROMTitle(romPath))

	session.Start(context.Background())

	game := newGame(session, *scale, colornames.Limegreen, colornames.Black)
	runErr := ebiten.RunGame(game)

	if err := session.Stop(); err != nil {
		log.Printf("Program stopped: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatal(runErr)
	}
}
