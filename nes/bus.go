package nes

// Bus is the NES system bus. It owns every device except the CPU: the PPU,
// the single controller port, and the inserted cartridge. It never holds a
// reference back to the CPU, per spec.md §3's ownership rule — the CPU
// owns its Bus, not the other way around.
type Bus struct {
	ram        [2 * 1024]byte // $0000-$1FFF, 2KB mirrored every 0x0800
	Ppu        *Ppu
	Controller *Controller
	Cart       *Cartridge

	oamDmaPage    byte
	oamDmaPending bool
}

const (
	ramMinAddr uint16 = 0x0000
	ramMaxAddr uint16 = 0x1FFF
	ramMirror  uint16 = 0x07FF

	ppuMinAddr uint16 = 0x2000
	ppuMaxAddr uint16 = 0x3FFF
	ppuMirror  uint16 = 0x0007

	oamDmaReg uint16 = 0x4014

	controller1Reg uint16 = 0x4016
	controller2Reg uint16 = 0x4017

	apuMinAddr uint16 = 0x4000
	apuMaxAddr uint16 = 0x4017

	cartMinAddr uint16 = 0x6000
	cartMaxAddr uint16 = 0xFFFF
)

func NewBus(cart *Cartridge) *Bus {
	ppu := NewPpu()
	ppu.ConnectCartridge(cart)

	return &Bus{
		Ppu:        ppu,
		Controller: NewController(),
		Cart:       cart,
	}
}

// Read services a CPU memory access. An address that falls outside every
// mapped device (the open $4000-$4017 APU range excepted, which silently
// reads 0) is UnmappedRead: recoverable, the caller should log it and
// return 0 rather than abort.
func (b *Bus) Read(addr uint16) (byte, error) {
	switch {
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		return b.ram[addr&ramMirror], nil
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		return b.Ppu.CPURead(addr & ppuMirror), nil
	case addr == controller1Reg:
		return b.Controller.Read(), nil
	case addr == controller2Reg:
		return 0, nil
	case addr >= apuMinAddr && addr <= apuMaxAddr:
		return 0, nil
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		return b.Cart.ReadPRG(addr), nil
	default:
		return 0, newError(ErrUnmappedRead, "read from unmapped address $%04X", addr)
	}
}

// Write services a CPU memory write. Returns the number of extra CPU
// cycles the write costs (513 or 514, for an OAM DMA trigger at $4014; 0
// otherwise). UnmappedWrite is fatal, per spec.md §7.
func (b *Bus) Write(addr uint16, data byte, oddCycle bool) (int, error) {
	switch {
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		b.ram[addr&ramMirror] = data
		return 0, nil
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		return 0, b.Ppu.CPUWrite(addr&ppuMirror, data)
	case addr == oamDmaReg:
		return b.doOamDma(data, oddCycle), nil
	case addr == controller1Reg:
		b.Controller.Write(data)
		return 0, nil
	case addr == controller2Reg:
		return 0, nil
	case addr >= apuMinAddr && addr <= apuMaxAddr:
		return 0, nil
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		if !b.Cart.WritePRG(addr, data) {
			return 0, newError(ErrInvalidRomWrite, "write to PRG-ROM at $%04X", addr)
		}
		return 0, nil
	default:
		return 0, newError(ErrUnmappedWrite, "write to unmapped address $%04X", addr)
	}
}

// doOamDma copies the 256-byte page $XX00-$XXFF into PPU OAM starting at
// OAMADDR. Costs 513 CPU cycles, or 514 if triggered on an odd CPU cycle,
// per spec.md's DMA timing resolution.
func (b *Bus) doOamDma(page byte, oddCycle bool) int {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		data, _ := b.Read(base + uint16(i))
		b.Ppu.CPUWrite(0x0004, data)
	}

	if oddCycle {
		return 514
	}
	return 513
}

// Tick forwards cpuCycles worth of CPU time to the PPU, which runs 3 dots
// per CPU cycle.
func (b *Bus) Tick(cpuCycles int) {
	b.Ppu.Tick(cpuCycles * 3)
}

func (b *Bus) PollNMI() bool {
	return b.Ppu.PollNMI()
}

func (b *Bus) PollNewFrame() bool {
	return b.Ppu.PollNewFrame()
}

// ResetVector reads the CPU reset vector ($FFFC/$FFFD) directly from the
// cartridge, bypassing the normal Read path since no device state should
// be perturbed before the CPU has even reset.
func (b *Bus) ResetVector() uint16 {
	lo := b.Cart.ReadPRG(0xFFFC)
	hi := b.Cart.ReadPRG(0xFFFD)
	return uint16(hi)<<8 | uint16(lo)
}
