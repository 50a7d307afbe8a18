// Package ebiten adapts a spectrum.Machine's framebuffer to an Ebiten
// display surface.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/speccygo/spectrum48/spectrum"
)

// Display owns the offscreen image the Spectrum framebuffer is copied
// into each frame, plus the scale/centre draw options computed from the
// host window size.
type Display struct {
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewDisplay constructs a Display sized to the fixed 256x192 Spectrum
// screen. There is no border or crop concept to carry over: the ULA has
// no scrollable/bordered video mode in scope (Non-goal).
func NewDisplay() *Display {
	return &Display{
		offscreen: ebiten.NewImage(spectrum.ScreenWidth, spectrum.ScreenHeight),
	}
}

// DrawToScreen copies the machine's framebuffer into the offscreen image
// and blits it into screen, scaled to fit and centred.
func (d *Display) DrawToScreen(screen *ebiten.Image, m *spectrum.Machine) {
	fb := m.Framebuffer()
	if len(fb) < spectrum.ScreenWidth*spectrum.ScreenHeight*4 {
		return
	}
	d.offscreen.WritePixels(fb)

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(spectrum.ScreenWidth)
	nativeH := float64(spectrum.ScreenHeight)

	scaleX := float64(screenW) / nativeW
	scaleY := float64(screenH) / nativeH
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	scaledW := nativeW * scale
	scaledH := nativeH * scale
	offsetX := (float64(screenW) - scaledW) / 2
	offsetY := (float64(screenH) - scaledH) / 2

	d.drawOpts = ebiten.DrawImageOptions{}
	d.drawOpts.GeoM.Scale(scale, scale)
	d.drawOpts.GeoM.Translate(offsetX, offsetY)
	d.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(d.offscreen, &d.drawOpts)
}
