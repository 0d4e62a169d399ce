package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/n-ulricksen/go-nes/nes"
)

// Keyboard binds:
//
//	A      ---> J
//	B      ---> K
//	Select ---> Right Shift
//	Start  ---> Enter
//	Up     ---> W
//	Down   ---> S
//	Left   ---> A
//	Right  ---> D
var controllerKeys = map[nes.Button]pixelgl.Button{
	nes.ButtonA:      pixelgl.KeyJ,
	nes.ButtonB:      pixelgl.KeyK,
	nes.ButtonSelect: pixelgl.KeyRightShift,
	nes.ButtonStart:  pixelgl.KeyEnter,
	nes.ButtonUp:     pixelgl.KeyW,
	nes.ButtonDown:   pixelgl.KeyS,
	nes.ButtonLeft:   pixelgl.KeyA,
	nes.ButtonRight:  pixelgl.KeyD,
}

// pollInput reads the window's keyboard state into the controller once per
// host frame, per spec.md §5's ordering guarantee.
func pollInput(win *pixelgl.Window, c *nes.Controller) {
	for button, key := range controllerKeys {
		if win.Pressed(key) {
			c.SetButtonState(button, true)
		} else if win.JustReleased(key) {
			c.SetButtonState(button, false)
		}
	}
}
