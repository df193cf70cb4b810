// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package readout renders the orientation as a small monochrome text panel,
// sized for a 128x64 OLED.
package readout

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/headtracker/internal/orientation"
)

// Panel size in pixels.
const (
	Width  = 128
	Height = 64
)

// yaw indicator row
const yawBarY = 58

// Render draws the pose, or a waiting notice when pose is nil. label is
// printed on the last text line, typically the filter name.
func Render(pose *orientation.Pose, label string) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	line := func(y int, s string) {
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(s)
	}

	if pose == nil {
		line(26, "Orientation")
		line(39, "Waiting...")
		return img
	}

	line(13, fmt.Sprintf("R: %6.1f", pose.Roll))
	line(26, fmt.Sprintf("P: %6.1f", pose.Pitch))
	line(39, fmt.Sprintf("Y: %6.1f", pose.Yaw))
	if label != "" {
		line(52, label)
	}

	// Yaw strip: a baseline with a 3px marker, -180 on the left.
	for x := 0; x < Width; x++ {
		img.SetGray(x, yawBarY+2, color.Gray{Y: 0x80})
	}
	mx := yawX(pose.Yaw)
	for x := mx - 1; x <= mx+1; x++ {
		for y := yawBarY; y < Height; y++ {
			img.SetGray(x, y, color.Gray{Y: 0xFF})
		}
	}
	return img
}

// yawX maps yaw in [-180, 180) onto a column, clamping out-of-range input.
func yawX(yaw float64) int {
	x := int((yaw + 180) / 360 * (Width - 1))
	switch {
	case math.IsNaN(yaw), x < 1:
		return 1
	case x > Width-2:
		return Width - 2
	}
	return x
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("readout: encode png: %w", err)
	}
	return nil
}
