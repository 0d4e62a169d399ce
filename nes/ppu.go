package nes

import "image"

// Ppu is the NES picture processing unit: a background/sprite renderer and
// interrupt source. It is a leaf component — it never holds a reference
// back to the Bus; the Bus owns it and pumps dot cycles into Tick.
//
// References:
// http://wiki.nesdev.com/w/index.php/PPU_registers
// http://wiki.nesdev.com/w/index.php/PPU_rendering
type Ppu struct {
	Cart *Cartridge

	ctrl PpuReg
	mask PpuReg

	vblank         bool
	sprite0Hit     bool
	spriteOverflow bool
	busLatch       byte // last byte written/read, backs PPUSTATUS's open-bus low bits

	vramAddr   PpuLoopyReg // "v", current VRAM address
	tempAddr   PpuLoopyReg // "t", temporary VRAM address / top-left onscreen tile
	fineX      byte        // fine X scroll, 3 bits
	writeLatch bool        // shared PPUSCROLL/PPUADDR write toggle; false = next write is first

	dataBuffer byte // internal PPUDATA read buffer

	oamAddr byte
	oam     objectAttributeMemory

	nameTable  [2][1024]byte // 2KB of nametable VRAM, folded per cartridge mirroring
	paletteRAM [32]byte

	scanline int // 0..261
	dot      int // 0..340

	pendingNMI   bool
	pendingFrame bool
}

func NewPpu() *Ppu {
	p := &Ppu{}
	p.oam.clear()
	return p
}

func (p *Ppu) ConnectCartridge(c *Cartridge) {
	p.Cart = c
}

// Tick advances the PPU by n dot cycles, firing the scanline/dot-indexed
// timing events documented in spec.md §4.2.
func (p *Ppu) Tick(n int) {
	for i := 0; i < n; i++ {
		p.tickOne()
	}
}

func (p *Ppu) tickOne() {
	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
		}
	}

	switch {
	case p.scanline == 241 && p.dot == 1:
		p.vblank = true
		if p.ctrl.isFlagSet(ctrlNmi) {
			p.pendingNMI = true
		}
	case p.scanline == 261 && p.dot == 1:
		p.vblank = false
		p.sprite0Hit = false
		p.spriteOverflow = false
		p.pendingFrame = true
	}
}

// PollNMI is an edge-triggered one-shot: it returns true exactly once per
// NMI raised, then false until the next one.
func (p *Ppu) PollNMI() bool {
	if p.pendingNMI {
		p.pendingNMI = false
		return true
	}
	return false
}

// PollNewFrame is an edge-triggered one-shot, set once per frame at the
// (261, 1) boundary.
func (p *Ppu) PollNewFrame() bool {
	if p.pendingFrame {
		p.pendingFrame = false
		return true
	}
	return false
}

func (p *Ppu) incrementAddr() {
	if p.ctrl.isFlagSet(ctrlVramInc) {
		p.vramAddr.set(p.vramAddr.value() + 32)
	} else {
		p.vramAddr.set(p.vramAddr.value() + 1)
	}
}

// CPURead services a CPU access to the already-mirrored $2000-$2007
// register window.
func (p *Ppu) CPURead(reg uint16) byte {
	var data byte

	switch reg {
	case 0x0002: // PPUSTATUS
		data = p.statusByte()
		p.vblank = false
		p.writeLatch = false
	case 0x0004: // OAMDATA
		data = p.oam.read(p.oamAddr)
	case 0x0007: // PPUDATA
		addr := p.vramAddr.value() & 0x3FFF
		if addr >= 0x3F00 {
			data = p.readInternal(addr)
			p.dataBuffer = p.readInternal(addr - 0x1000)
		} else {
			data = p.dataBuffer
			p.dataBuffer = p.readInternal(addr)
		}
		p.incrementAddr()
	default: // write-only registers read back the open-bus latch
		data = p.busLatch
	}

	p.busLatch = data
	return data
}

func (p *Ppu) statusByte() byte {
	var b byte
	if p.vblank {
		b |= 1 << 7
	}
	if p.sprite0Hit {
		b |= 1 << 6
	}
	if p.spriteOverflow {
		b |= 1 << 5
	}
	return b | (p.busLatch & 0x1F)
}

// CPUWrite services a CPU write to the already-mirrored $2000-$2007
// register window. Returns an error only for InvalidRomWrite (PPUDATA
// targeting CHR-ROM).
func (p *Ppu) CPUWrite(reg uint16, data byte) error {
	p.busLatch = data

	switch reg {
	case 0x0000: // PPUCTRL
		wasEnabled := p.ctrl.isFlagSet(ctrlNmi)
		p.ctrl.set(data)
		p.tempAddr.setNametable(data & 0x03)
		if !wasEnabled && p.ctrl.isFlagSet(ctrlNmi) && p.vblank {
			p.pendingNMI = true
		}
	case 0x0001: // PPUMASK
		p.mask.set(data)
	case 0x0003: // OAMADDR
		p.oamAddr = data
	case 0x0004: // OAMDATA
		p.oam.write(p.oamAddr, data)
		p.oamAddr++
	case 0x0005: // PPUSCROLL
		if !p.writeLatch {
			p.fineX = data & 0x07
			p.tempAddr.setCoarseX(data >> 3)
		} else {
			p.tempAddr.setFineY(data & 0x07)
			p.tempAddr.setCoarseY(data >> 3)
		}
		p.writeLatch = !p.writeLatch
	case 0x0006: // PPUADDR
		if !p.writeLatch {
			p.tempAddr.set((p.tempAddr.value() & 0x00FF) | (uint16(data&0x3F) << 8))
		} else {
			p.tempAddr.set((p.tempAddr.value() & 0xFF00) | uint16(data))
			p.vramAddr = p.tempAddr
		}
		p.writeLatch = !p.writeLatch
	case 0x0007: // PPUDATA
		addr := p.vramAddr.value() & 0x3FFF
		if err := p.writeInternal(addr, data); err != nil {
			return err
		}
		p.incrementAddr()
	}

	return nil
}

// readInternal services the PPU's own 14-bit address space: pattern
// tables, nametables (mirrored), and palette RAM (with its mirrored
// entries).
func (p *Ppu) readInternal(addr uint16) byte {
	addr &= 0x3FFF

	switch {
	case addr < 0x2000:
		return p.Cart.ReadCHR(addr)
	case addr < 0x3F00:
		page, offset := p.nametableIndex(addr)
		return p.nameTable[page][offset]
	default:
		return p.paletteRAM[paletteIndex(addr)]
	}
}

func (p *Ppu) writeInternal(addr uint16, data byte) error {
	addr &= 0x3FFF

	switch {
	case addr < 0x2000:
		if !p.Cart.WriteCHR(addr, data) {
			return newError(ErrInvalidRomWrite, "PPU write to CHR-ROM at $%04X", addr)
		}
	case addr < 0x3F00:
		page, offset := p.nametableIndex(addr)
		p.nameTable[page][offset] = data
	default:
		p.paletteRAM[paletteIndex(addr)] = data
	}

	return nil
}

func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

// nametableIndex folds a raw $2000-$2FFF (or its $3000-$3EFF mirror) offset
// down to one of the two physical 1 KiB nametable pages this PPU backs,
// per the cartridge's mirroring mode.
func (p *Ppu) nametableIndex(addr uint16) (page int, offset uint16) {
	raw := addr & 0x0FFF
	logicalPage := raw / 0x400
	offset = raw % 0x400

	mirroring := MirrorHorizontal
	if p.Cart != nil {
		mirroring = p.Cart.Mirroring()
	}

	if mirroring == MirrorVertical {
		page = int(logicalPage & 0x01)
	} else {
		page = int((logicalPage >> 1) & 0x01)
	}
	return page, offset
}

////////////////////////////////////////////////////////////////
// Renderer-facing read-only accessors. Pixel composition itself is the
// renderer's responsibility; the PPU exposes only the state needed to do
// it, per spec.md §4.2.

func (p *Ppu) BackgroundPatternTableBase() uint16 {
	if p.ctrl.isFlagSet(ctrlBgPatternTbl) {
		return 0x1000
	}
	return 0x0000
}

func (p *Ppu) SpritePatternTableBase() uint16 {
	if p.ctrl.isFlagSet(ctrlSpritePatternTbl) {
		return 0x1000
	}
	return 0x0000
}

func (p *Ppu) NametableBaseIndex() byte {
	return byte(p.vramAddr.getNametable())
}

func (p *Ppu) ScrollX() (coarse byte, fine byte) {
	return p.vramAddr.getCoarseX(), p.fineX
}

func (p *Ppu) ScrollY() (coarse byte, fine byte) {
	return p.vramAddr.getCoarseY(), p.vramAddr.getFineY()
}

func (p *Ppu) SpriteHeight() int {
	if p.ctrl.isFlagSet(ctrlSpriteSize) {
		return 16
	}
	return 8
}

func (p *Ppu) ShowBackground() bool { return p.mask.isFlagSet(maskBgShow) }
func (p *Ppu) ShowSprites() bool    { return p.mask.isFlagSet(maskSpriteShow) }

func (p *Ppu) Palette() [32]byte         { return p.paletteRAM }
func (p *Ppu) Nametables() [2][1024]byte { return p.nameTable }
func (p *Ppu) OAM() [256]byte            { return p.oam }

// ReadCHR exposes cartridge CHR data (pattern tables) to an external
// renderer, which needs it to decode background and sprite tiles.
func (p *Ppu) ReadCHR(addr uint16) byte { return p.Cart.ReadCHR(addr) }

// SetSprite0Hit and SetSpriteOverflow let an external renderer report
// conditions it detected while compositing a scanline, since pixel
// composition itself is the renderer's responsibility, not the PPU's.
// Both latch until the (261, 1) clear per spec.md's timing table.
func (p *Ppu) SetSprite0Hit()     { p.sprite0Hit = true }
func (p *Ppu) SetSpriteOverflow() { p.spriteOverflow = true }

// GetPatternTable decodes one of the two 4 KiB CHR pattern tables into a
// 128x128 RGBA image, mapping each 2-bit tile pixel value through the given
// 4-entry palette (indices into palette RAM) and then through the system
// palette. Used by the debug CHR
// view, which renders without executing the CPU.
func (p *Ppu) GetPatternTable(table int, palette [4]byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := uint16(tileY*256 + tileX*16)

			for row := 0; row < 8; row++ {
				base := uint16(table)*0x1000 + offset + uint16(row)
				lo := p.Cart.ReadCHR(base)
				hi := p.Cart.ReadCHR(base + 8)

				for col := 0; col < 8; col++ {
					bitLo := (lo >> (7 - col)) & 0x01
					bitHi := (hi >> (7 - col)) & 0x01
					pixel := (bitHi << 1) | bitLo

					c := SystemPalette[p.paletteRAM[palette[pixel]]&0x3F]
					img.SetRGBA(tileX*8+col, tileY*8+row, c)
				}
			}
		}
	}

	return img
}
