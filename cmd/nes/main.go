package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/faiface/pixel/pixelgl"

	"github.com/n-ulricksen/go-nes/nes"
)

// Command line flags
var (
	flagDebug   bool
	flagLogging bool
	flagHz      float64
)

func main() {
	parseFlags()

	if flag.NArg() < 1 {
		fmt.Println("usage: nes [-d] [-l] [-hz rate] <rom-path>")
		os.Exit(1)
	}
	romPath := flag.Arg(0)

	fmt.Println("Starting NES...")

	data, err := os.ReadFile(romPath)
	if err != nil {
		fmt.Println("Unable to read ROM:", err)
		os.Exit(1)
	}

	cart, err := nes.NewCartridge(data)
	if err != nil {
		fmt.Println("Invalid cartridge:", err)
		os.Exit(1)
	}

	bus := nes.NewBus(cart)
	cpu := nes.NewCpu6502()
	cpu.ConnectBus(bus)

	if flagLogging {
		fmt.Println("Instruction trace:", cpu.LogPath())
	} else {
		cpu.Logger.SetOutput(io.Discard)
	}

	fmt.Println("Resetting NES...")
	cpu.Reset()

	pixelgl.Run(func() {
		run(cpu, bus, flagDebug)
	})
}

func parseFlags() {
	flag.BoolVar(&flagDebug, "d", false, "enable debug panel")
	flag.BoolVar(&flagLogging, "l", false, "enable instruction logging")
	flag.Float64Var(&flagHz, "hz", 60.0, "capped host frame rate")

	flag.Parse()
}

// run drives the host frame loop: poll input, execute CPU steps until a
// frame completes (servicing NMI as the PPU raises it), render, repeat.
// Per spec.md §5, the renderer only runs between Step calls, never during.
func run(cpu *nes.Cpu6502, bus *nes.Bus, isDebug bool) {
	disp := NewDisplay(isDebug)

	interval := time.Duration(1000.0/flagHz) * time.Millisecond
	fmt.Println("Frame interval:", interval)

	for !disp.Closed() {
		start := time.Now()

		pollInput(disp.window, bus.Controller)

		for !bus.PollNewFrame() {
			_, err := cpu.Step()
			if err != nil {
				fmt.Println("Fatal core error:", err)
				fmt.Println(spew.Sdump(cpu))
				os.Exit(1)
			}
			if bus.PollNMI() {
				cpu.NMI()
			}
		}

		renderFrame(bus.Ppu, disp)

		if isDebug {
			drawDebugPanel(cpu, bus, disp)
		}

		disp.UpdateScreen()

		if elapsed := time.Since(start); elapsed < interval {
			time.Sleep(interval - elapsed)
		}
	}
}

func drawDebugPanel(cpu *nes.Cpu6502, bus *nes.Bus, disp *Display) {
	pal0 := [4]byte{0, 1, 2, 3}
	pt0 := bus.Ppu.GetPatternTable(0, pal0)
	pt1 := bus.Ppu.GetPatternTable(1, pal0)

	disp.DrawDebugRGBA(8, int(gameH)-128-8, pt0)
	disp.DrawDebugRGBA(128+16, int(gameH)-128-8, pt1)

	disp.WriteRegDebugString(fmt.Sprintf(
		"PC: $%04X\nA: $%02X X: $%02X Y: $%02X\nSP: $%02X  P: %08b\nCYC: %d",
		cpu.Pc, cpu.A, cpu.X, cpu.Y, cpu.Sp, cpu.Status, cpu.CycleCount,
	))
	disp.WriteInstDebugString(cpu.OpDiss)
}
