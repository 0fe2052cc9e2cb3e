package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/common"
	"github.com/milk9111/portalchef/ecs/system"
	"github.com/milk9111/portalchef/portal"
	"github.com/milk9111/portalchef/prefabs"
)

const stickDeadzone = 0.2

// Input turns keyboard, mouse and gamepad state into portal controls.
// Portal 0 follows WASD, Q/E and the mouse; portal 1 follows the arrow keys
// and comma/period. Gamepad n drives portal n.
type Input struct {
	moveSpeed   float64
	sensitivity float64

	cursorX, cursorY int
	cursorKnown      bool
}

func NewInput(spec prefabs.PortalSpec) *Input {
	in := &Input{}
	in.SetSpec(spec)
	return in
}

func (in *Input) SetSpec(spec prefabs.PortalSpec) {
	in.moveSpeed = spec.MoveSpeed
	in.sensitivity = spec.Sensitivity
}

type portalKeys struct {
	left, right, up, down ebiten.Key
	ccw, cw               ebiten.Key
}

var keyBindings = [2]portalKeys{
	{left: ebiten.KeyA, right: ebiten.KeyD, up: ebiten.KeyW, down: ebiten.KeyS, ccw: ebiten.KeyQ, cw: ebiten.KeyE},
	{left: ebiten.KeyArrowLeft, right: ebiten.KeyArrowRight, up: ebiten.KeyArrowUp, down: ebiten.KeyArrowDown, ccw: ebiten.KeyComma, cw: ebiten.KeyPeriod},
}

func (in *Input) Update(d *system.Driver, elapsed float64) {
	if d == nil {
		return
	}

	gamepads := ebiten.GamepadIDs()
	for i, keys := range keyBindings {
		id := portal.ID(i)

		var move cp.Vector
		turn := 0.0
		if ebiten.IsKeyPressed(keys.left) {
			move.X--
		}
		if ebiten.IsKeyPressed(keys.right) {
			move.X++
		}
		if ebiten.IsKeyPressed(keys.up) {
			move.Y++
		}
		if ebiten.IsKeyPressed(keys.down) {
			move.Y--
		}
		if ebiten.IsKeyPressed(keys.ccw) {
			turn++
		}
		if ebiten.IsKeyPressed(keys.cw) {
			turn--
		}

		if i < len(gamepads) {
			pad := gamepads[i]
			x := ebiten.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisLeftStickHorizontal)
			y := ebiten.StandardGamepadAxisValue(pad, ebiten.StandardGamepadAxisLeftStickVertical)
			if math.Abs(x) > stickDeadzone {
				move.X = x
			}
			if math.Abs(y) > stickDeadzone {
				move.Y = -y
			}
			if ebiten.IsStandardGamepadButtonPressed(pad, ebiten.StandardGamepadButtonFrontTopLeft) {
				turn = 1
			}
			if ebiten.IsStandardGamepadButtonPressed(pad, ebiten.StandardGamepadButtonFrontTopRight) {
				turn = -1
			}
		}

		if id == portal.First {
			move = move.Mult(in.moveSpeed * elapsed).Add(in.mouseDelta())
			if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
				turn = 1
			} else if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
				turn = -1
			}
		} else {
			move = move.Mult(in.moveSpeed * elapsed)
		}

		if move != (cp.Vector{}) {
			d.Move(id, move)
		}
		d.Turn(id, common.Clamp(turn, -1, 1))
	}
}

// mouseDelta converts cursor motion since the last frame into world units:
// a sweep across the whole screen moves the portal by sensitivity units.
func (in *Input) mouseDelta() cp.Vector {
	x, y := ebiten.CursorPosition()
	if !in.cursorKnown {
		in.cursorX, in.cursorY, in.cursorKnown = x, y, true
		return cp.Vector{}
	}
	dx, dy := x-in.cursorX, y-in.cursorY
	in.cursorX, in.cursorY = x, y
	return cp.Vector{
		X: in.sensitivity * float64(dx) / common.BaseWidth,
		Y: -in.sensitivity * float64(dy) / common.BaseHeight,
	}
}
