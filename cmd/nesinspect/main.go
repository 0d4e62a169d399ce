// Command nesinspect is a headless terminal inspector for the NES core: a
// bubbletea TUI that single-steps the CPU and renders register/PPU state
// without opening a pixelgl window, useful over SSH or in CI smoke-checks.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/n-ulricksen/go-nes/nes"
)

func main() {
	romPath := flag.String("rom", "", "path to an iNES ROM file")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("usage: nesinspect -rom <path>")
		os.Exit(1)
	}

	data, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Println("unable to read ROM:", err)
		os.Exit(1)
	}

	cart, err := nes.NewCartridge(data)
	if err != nil {
		fmt.Println("unable to parse ROM:", err)
		os.Exit(1)
	}

	bus := nes.NewBus(cart)
	cpu := nes.NewCpu6502()
	cpu.ConnectBus(bus)
	cpu.Reset()

	p := tea.NewProgram(model{cpu: cpu, bus: bus})
	if _, err := p.Run(); err != nil {
		fmt.Println("nesinspect:", err)
		os.Exit(1)
	}
}

type model struct {
	cpu      *nes.Cpu6502
	bus      *nes.Bus
	err      error
	lastStep int
	showDiss bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "d":
			m.showDiss = !m.showDiss
		case " ", "n":
			cycles, err := m.cpu.Step()
			m.lastStep = cycles
			if err != nil {
				m.err = err
			}
			if m.bus.PollNMI() {
				m.cpu.NMI()
			}
		case "f":
			for i := 0; i < 100000 && m.err == nil; i++ {
				cycles, err := m.cpu.Step()
				m.lastStep = cycles
				if err != nil {
					m.err = err
					break
				}
				if m.bus.PollNMI() {
					m.cpu.NMI()
				}
				if m.bus.PollNewFrame() {
					break
				}
			}
		}
	}
	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m model) regs() string {
	return fmt.Sprintf(
		"PC: $%04X\nA:  $%02X\nX:  $%02X\nY:  $%02X\nSP: $%02X\nP:  %08b\nCYC: %d\nlast step: %d cycles",
		m.cpu.Pc, m.cpu.A, m.cpu.X, m.cpu.Y, m.cpu.Sp, m.cpu.Status, m.cpu.CycleCount, m.lastStep,
	)
}

func (m model) ppu() string {
	coarseX, fineX := m.bus.Ppu.ScrollX()
	coarseY, fineY := m.bus.Ppu.ScrollY()
	return fmt.Sprintf(
		"scroll: coarse (%d,%d) fine (%d,%d)\nbg pattern base: $%04X\nsprite pattern base: $%04X",
		coarseX, coarseY, fineX, fineY,
		m.bus.Ppu.BackgroundPatternTableBase(), m.bus.Ppu.SpritePatternTableBase(),
	)
}

// disassembly renders the instructions from the current PC through PC+32,
// sorted by address so it reads top-to-bottom in program order.
func (m model) disassembly() string {
	start := m.cpu.Pc
	end := start + 32
	if end < start {
		end = 0xFFFF
	}
	lines := m.cpu.Disassemble(start, end)

	addrs := make([]uint16, 0, len(lines))
	for addr := range lines {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var out []string
	for _, addr := range addrs {
		line := lines[addr]
		if addr == m.cpu.Pc {
			line = "> " + line
		} else {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m model) View() string {
	sections := []string{
		headerStyle.Render("nesinspect") + "  (space/n: step, f: run to frame, d: disassembly, q: quit)",
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.regs(), "    ", m.ppu()),
		"",
		"last instruction:",
		m.cpu.OpDiss,
	}
	if m.showDiss {
		sections = append(sections, "", "disassembly:", m.disassembly())
	}
	if m.err != nil {
		sections = append(sections, "", errStyle.Render("fatal: "+m.err.Error()), spew.Sdump(m.cpu))
	}
	return strings.Join(sections, "\n")
}
