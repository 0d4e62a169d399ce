package nes

// objectAttributeMemory is the PPU's 256-byte sprite attribute table: 64
// sprites x 4 bytes (y, tile id, attribute, x), addressed by OAMADDR.
type objectAttributeMemory [256]byte

// oamSprite is a read-only view of one 4-byte OAM entry. Nothing calls
// sprite; the renderer reads the raw array returned by Ppu.OAM instead.
type oamSprite struct {
	y         byte
	id        byte
	attribute byte
	x         byte
}

func (oam *objectAttributeMemory) read(addr byte) byte {
	return oam[addr]
}

func (oam *objectAttributeMemory) write(addr byte, data byte) {
	oam[addr] = data
}

func (oam *objectAttributeMemory) clear() {
	for i := range oam {
		oam[i] = 0xFF
	}
}

func (oam *objectAttributeMemory) sprite(index int) oamSprite {
	base := index * 4
	return oamSprite{
		y:         oam[base],
		id:        oam[base+1],
		attribute: oam[base+2],
		x:         oam[base+3],
	}
}
