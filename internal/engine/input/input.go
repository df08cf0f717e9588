// Package input turns SDL2 events into per-frame viewer controls.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-mesh/internal/engine/render"
)

// Frame is the input gathered since the previous Poll.
type Frame struct {
	Quit bool

	Resized       bool
	Width, Height int

	DragX, DragY float32
	Wheel        float32

	// Forward, Right and Up are -1, 0 or 1 from the held movement keys.
	Forward, Right, Up float32

	// TogglePass is set for each pass whose number key was pressed.
	TogglePass [render.PassCount]bool
	ToggleCull bool
	Rebuild    bool
}

// Input polls SDL events and tracks held keys across frames.
type Input struct {
	dragging bool
	held     map[sdl.Keycode]bool
}

// New creates an input handler.
func New() *Input {
	return &Input{held: make(map[sdl.Keycode]bool)}
}

// Poll drains the SDL event queue.
func (i *Input) Poll() Frame {
	var f Frame
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			f.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				f.Resized = true
				f.Width, f.Height = int(e.Data1), int(e.Data2)
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				f.DragX += float32(e.XRel)
				f.DragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			f.Wheel += float32(e.Y)

		case *sdl.KeyboardEvent:
			down := e.Type == sdl.KEYDOWN
			i.held[e.Keysym.Sym] = down
			if down && e.Repeat == 0 {
				i.pressed(e.Keysym.Sym, &f)
			}
		}
	}

	f.Forward = i.axis(sdl.K_w, sdl.K_s)
	f.Right = i.axis(sdl.K_d, sdl.K_a)
	f.Up = i.axis(sdl.K_e, sdl.K_q)
	return f
}

func (i *Input) pressed(key sdl.Keycode, f *Frame) {
	switch key {
	case sdl.K_ESCAPE:
		f.Quit = true
	case sdl.K_1, sdl.K_2, sdl.K_3, sdl.K_4:
		f.TogglePass[key-sdl.K_1] = true
	case sdl.K_c:
		f.ToggleCull = true
	case sdl.K_r:
		f.Rebuild = true
	}
}

func (i *Input) axis(pos, neg sdl.Keycode) float32 {
	var v float32
	if i.held[pos] {
		v++
	}
	if i.held[neg] {
		v--
	}
	return v
}
