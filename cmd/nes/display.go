package main

import (
	"image"
	"image/color"
	"log"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/faiface/pixel/text"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// Display owns the pixelgl window and the two RGBA buffers the PPU's
// framebuffer and debug panel are rendered into.
type Display struct {
	gameRgba  *image.RGBA
	debugRgba *image.RGBA

	window      *pixelgl.Window
	gameMatrix  pixel.Matrix
	debugMatrix pixel.Matrix

	debugAtlas          *text.Atlas
	debugRegText        *text.Text
	debugInstText       *text.Text
	debugControllerText *text.Text

	isDebug bool
}

const (
	nesResW    float64 = 256
	nesResH    float64 = 240
	scale      float64 = 3
	gameW      float64 = nesResW * scale
	gameH      float64 = nesResH * scale
	screenPosX float64 = 600
	screenPosY float64 = 400

	debugResW float64 = 512
	debugResH float64 = gameH
)

func NewDisplay(isDebug bool) *Display {
	rect := image.Rect(0, 0, int(nesResW), int(nesResH))
	gameRgba := image.NewRGBA(rect)

	rect = image.Rect(0, 0, int(debugResW), int(debugResH))
	debugRgba := image.NewRGBA(rect)

	screenW := gameW
	if isDebug {
		screenW += debugResW
	}

	config := pixelgl.WindowConfig{
		Title:    "NES Emulator",
		Bounds:   pixel.R(0, 0, screenW, gameH),
		Position: pixel.V(screenPosX, screenPosY),
		VSync:    true,
	}
	window, err := pixelgl.NewWindow(config)
	if err != nil {
		log.Fatal("Unable to create new PixelGl window...\n", err)
	}

	pic := pixel.PictureDataFromImage(gameRgba)
	gameMatrix := pixel.IM.Moved(pic.Bounds().Center().Scaled(scale))
	gameMatrix = gameMatrix.Scaled(pic.Bounds().Center().Scaled(scale), scale)

	pic = pixel.PictureDataFromImage(debugRgba)
	debugMatrix := pixel.IM.Moved(pic.Bounds().Center().Add(pixel.V(gameW, 0)))

	debugAtlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	debugRegText := text.New(pixel.V(gameW+8, gameH-40), debugAtlas)
	debugInstText := text.New(pixel.V(gameW+8, gameH-180), debugAtlas)
	debugControllerText := text.New(pixel.V(gameW+300, gameH-40), debugAtlas)

	return &Display{
		gameRgba,
		debugRgba,
		window,
		gameMatrix,
		debugMatrix,
		debugAtlas,
		debugRegText,
		debugInstText,
		debugControllerText,
		isDebug,
	}
}

func (d *Display) DrawPixel(x, y int, c color.RGBA) {
	d.gameRgba.SetRGBA(x, y, c)
}

func (d *Display) DrawDebugPixel(x, y int, c color.RGBA) {
	d.debugRgba.SetRGBA(x, y, c)
}

// DrawDebugRGBA draws a given image to an (x, y) offset within the debug image.
func (d *Display) DrawDebugRGBA(x, y int, img *image.RGBA) {
	for imgY := 0; imgY < img.Rect.Dy(); imgY++ {
		for imgX := 0; imgX < img.Rect.Dx(); imgX++ {
			c := img.RGBAAt(imgX, imgY)
			d.DrawDebugPixel(x+imgX, y+imgY, c)
		}
	}
}

func (d *Display) WriteRegDebugString(t string) {
	d.debugRegText.Clear()
	d.debugRegText.WriteString(t)
}

func (d *Display) WriteInstDebugString(t string) {
	d.debugInstText.Clear()
	d.debugInstText.WriteString(t)
}

func (d *Display) WriteControllerDebugString(t string) {
	d.debugControllerText.Clear()
	d.debugControllerText.WriteString(t)
}

// UpdateScreen draws both buffers (game always, debug panel when enabled)
// to the window and flips it.
func (d *Display) UpdateScreen() {
	d.window.Clear(colornames.Black)

	sprite := getSpriteFromImage(d.gameRgba)
	sprite.Draw(d.window, d.gameMatrix)

	if d.isDebug {
		sprite = getSpriteFromImage(d.debugRgba)
		sprite.Draw(d.window, d.debugMatrix)
		d.debugRegText.Draw(d.window, pixel.IM)
		d.debugInstText.Draw(d.window, pixel.IM)
		d.debugControllerText.Draw(d.window, pixel.IM)
	}

	d.window.Update()
}

func (d *Display) Closed() bool { return d.window.Closed() }

func getSpriteFromImage(img *image.RGBA) *pixel.Sprite {
	pic := pixel.PictureDataFromImage(img)
	return pixel.NewSprite(pic, pic.Bounds())
}
