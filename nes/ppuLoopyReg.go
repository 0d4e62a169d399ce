package nes

// Loopy registers are 15 bit internal PPU registers used for implementing
// scrolling.
// Loopy register layout:
//   yyy NN YYYYY XXXXX
//
//   yyy   - fine Y scroll
//   NN    - nametable select
//   YYYYY - coarse Y scroll
//   XXXXX - coarse X scroll
type PpuLoopyReg uint16

const (
	loopyCoarseX   PpuLoopyReg = 0b11111
	loopyCoarseY               = 0b11111 << 5
	loopyNametable             = 0b11 << 10
	loopyFineY                 = 0b111 << 12
)

// Returns the value fo the loopy register as a unsigned 16-bit integer.
func (r *PpuLoopyReg) value() uint16 {
	return uint16(*r)
}

// Sets coarse X (bits 0-4) of the loopy register with the low 5 bits of the
// given value.
func (r *PpuLoopyReg) setCoarseX(val byte) {
	// Get relevant 5 bits
	setBits := PpuLoopyReg(val) & 0b11111

	// Clear bits about to be set
	*r &^= loopyCoarseX

	// Set new bits
	*r |= (setBits)
}

// Sets coarse Y (bits 5-9) of the loopy register with the low 5 bits of the
// given value.
func (r *PpuLoopyReg) setCoarseY(val byte) {
	// Get relevant 5 bits
	setBits := PpuLoopyReg(val) & 0b11111

	// Clear bits about to be set
	*r &^= loopyCoarseY

	// Set new bits
	*r |= (setBits << 5)
}

// Sets nametable (bits 10-11) of the loopy register with the low 2 bits of the
// given value.
func (r *PpuLoopyReg) setNametable(val byte) {
	// Get relevant 2 bits
	setBits := PpuLoopyReg(val) & 0b11

	// Clear bits about to be set
	*r &^= loopyNametable

	// Set new bits
	*r |= (setBits << 10)
}

// Sets fine Y (bits 12-14) of the loopy register with the low 3 bits of the
// given value.
func (r *PpuLoopyReg) setFineY(val byte) {
	// Get relevant 3 bits
	setBits := PpuLoopyReg(val) & 0b111

	// Clear bits about to be set
	*r &^= loopyFineY

	// Set new bits
	*r |= (setBits << 12)
}

func (r *PpuLoopyReg) getCoarseX() byte {
	return byte(*r & PpuLoopyReg(loopyCoarseX))
}

func (r *PpuLoopyReg) getCoarseY() byte {
	return byte((*r & loopyCoarseY) >> 5)
}

func (r *PpuLoopyReg) getNametable() byte {
	return byte((*r & loopyNametable) >> 10)
}

func (r *PpuLoopyReg) getFineY() byte {
	return byte((*r & loopyFineY) >> 12)
}

// set replaces the full 15-bit register value, masking off the top bit.
func (r *PpuLoopyReg) set(val uint16) {
	*r = PpuLoopyReg(val & 0x7FFF)
}

// incrementCoarseX advances the horizontal scroll position by one tile,
// wrapping coarse X and flipping the horizontal nametable bit at the 32-tile
// boundary.
func (r *PpuLoopyReg) incrementCoarseX() {
	if r.getCoarseX() == 31 {
		r.setCoarseX(0)
		r.setNametable(r.getNametable() ^ 0b01)
	} else {
		r.setCoarseX(r.getCoarseX() + 1)
	}
}

// incrementY advances fine Y, rolling into coarse Y (and the vertical
// nametable bit at the 30-row boundary) per the documented PPU scrolling
// hardware bug where row 31 wraps without flipping nametables.
func (r *PpuLoopyReg) incrementY() {
	fineY := r.getFineY()
	if fineY < 7 {
		r.setFineY(fineY + 1)
		return
	}

	r.setFineY(0)
	coarseY := r.getCoarseY()
	switch coarseY {
	case 29:
		r.setCoarseY(0)
		r.setNametable(r.getNametable() ^ 0b10)
	case 31:
		r.setCoarseY(0)
	default:
		r.setCoarseY(coarseY + 1)
	}
}
