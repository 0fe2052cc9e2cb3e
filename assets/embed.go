package assets

import (
	"bytes"
	_ "embed"
	"image"
	_ "image/png"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed icon.png
var iconPNG []byte

// Icon is the pot icon shown in the pause menu.
var Icon *ebiten.Image

// WindowIcons is the decoded icon for ebiten.SetWindowIcon.
var WindowIcons []image.Image

func init() {
	img, _, err := image.Decode(bytes.NewReader(iconPNG))
	if err != nil {
		log.Fatalf("embed: decode icon.png: %v", err)
	}
	WindowIcons = []image.Image{img}
	Icon = ebiten.NewImageFromImage(img)
}
