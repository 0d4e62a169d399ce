package main

import (
	"github.com/n-ulricksen/go-nes/nes"
)

// renderFrame reconstructs one 256x240 RGB frame from PPU state and draws
// it into the display's game buffer. The PPU only exposes the state
// needed to do this (pattern tables, nametables, palette RAM, OAM, scroll);
// composition itself happens entirely out here, per spec.md §4.2.
func renderFrame(ppu *nes.Ppu, disp *Display) {
	var bg [256][240]byte // palette index (0 = transparent) per background pixel, for sprite priority

	if ppu.ShowBackground() {
		renderBackground(ppu, disp, &bg)
	}
	if ppu.ShowSprites() {
		renderSprites(ppu, disp, &bg)
	}
}

func renderBackground(ppu *nes.Ppu, disp *Display, bg *[256][240]byte) {
	nametables := ppu.Nametables()
	palette := ppu.Palette()
	patternBase := ppu.BackgroundPatternTableBase()
	coarseX, fineX := ppu.ScrollX()
	coarseY, fineY := ppu.ScrollY()
	base := ppu.NametableBaseIndex()

	scrollPxX := int(coarseX)*8 + int(fineX)
	scrollPxY := int(coarseY)*8 + int(fineY)

	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			worldX := x + scrollPxX
			worldY := y + scrollPxY

			nametableSel := base
			if (worldX/256)%2 == 1 {
				nametableSel ^= 0x01
			}
			if (worldY/240)%2 == 1 {
				nametableSel ^= 0x02
			}
			page := int(nametableSel) & 0x01 // this PPU backs 2 physical pages, selected by mirroring

			tileX := (worldX % 256) / 8
			tileY := (worldY % 240) / 8
			fx := (worldX % 256) % 8
			fy := (worldY % 240) % 8

			nametable := &nametables[page]
			tileIdx := nametable[tileY*32+tileX]

			attrByte := nametable[0x3C0+(tileY/4)*8+(tileX/4)]
			shift := uint((tileY%4)/2*4 + (tileX%4)/2*2)
			attr := (attrByte >> shift) & 0x03

			loPlane := ppu.ReadCHR(patternBase + uint16(tileIdx)*16 + uint16(fy))
			hiPlane := ppu.ReadCHR(patternBase + uint16(tileIdx)*16 + uint16(fy) + 8)

			bitLo := (loPlane >> (7 - fx)) & 0x01
			bitHi := (hiPlane >> (7 - fx)) & 0x01
			pixel := (bitHi << 1) | bitLo

			bg[x][y] = pixel

			screenY := 239 - y
			if pixel == 0 {
				disp.DrawPixel(x, screenY, nes.SystemPalette[palette[0]&0x3F])
			} else {
				paletteIdx := palette[attr*4+pixel] & 0x3F
				disp.DrawPixel(x, screenY, nes.SystemPalette[paletteIdx])
			}
		}
	}
}

// renderSprites draws OAM sprites back-to-front (highest OAM index first,
// so index 0 ends up on top, matching NES sprite priority). It also
// reports sprite-0 hit and the >8-per-scanline overflow, since pixel
// composition is this renderer's job rather than the PPU's.
func renderSprites(ppu *nes.Ppu, disp *Display, bg *[256][240]byte) {
	oam := ppu.OAM()
	palette := ppu.Palette()
	patternBase := ppu.SpritePatternTableBase()
	height := ppu.SpriteHeight()

	var perScanline [240]int
	for i := 0; i < 64; i++ {
		y := int(oam[i*4]) + 1
		for row := 0; row < height; row++ {
			py := y + row
			if py >= 0 && py < 240 {
				perScanline[py]++
			}
		}
	}
	for _, n := range perScanline {
		if n > 8 {
			ppu.SetSpriteOverflow()
			break
		}
	}

	for i := 63; i >= 0; i-- {
		base := i * 4
		spriteY := int(oam[base]) + 1
		tileIdx := oam[base+1]
		attr := oam[base+2]
		spriteX := int(oam[base+3])

		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0
		behindBg := attr&0x20 != 0
		paletteSel := attr & 0x03

		for row := 0; row < height; row++ {
			py := spriteY + row
			if py < 0 || py >= 240 {
				continue
			}

			srcRow := row
			if flipV {
				srcRow = height - 1 - row
			}

			var tableBase uint16
			var tile uint16
			if height == 16 {
				tableBase = uint16(tileIdx&0x01) * 0x1000
				tile = uint16(tileIdx &^ 0x01)
				if srcRow >= 8 {
					tile++
					srcRow -= 8
				}
			} else {
				tableBase = patternBase
				tile = uint16(tileIdx)
			}

			loPlane := ppu.ReadCHR(tableBase + tile*16 + uint16(srcRow))
			hiPlane := ppu.ReadCHR(tableBase + tile*16 + uint16(srcRow) + 8)

			for col := 0; col < 8; col++ {
				px := spriteX + col
				if px < 0 || px >= 256 {
					continue
				}

				srcCol := col
				if flipH {
					srcCol = 7 - col
				}

				bitLo := (loPlane >> (7 - srcCol)) & 0x01
				bitHi := (hiPlane >> (7 - srcCol)) & 0x01
				pixel := (bitHi << 1) | bitLo
				if pixel == 0 {
					continue
				}

				bgOpaque := bg[px][py] != 0
				if i == 0 && bgOpaque {
					ppu.SetSprite0Hit()
				}
				if behindBg && bgOpaque {
					continue
				}

				paletteIdx := palette[16+paletteSel*4+pixel] & 0x3F
				disp.DrawPixel(px, 239-py, nes.SystemPalette[paletteIdx])
			}
		}
	}
}
