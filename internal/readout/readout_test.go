// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package readout

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/headtracker/internal/orientation"
)

func lit(img *image.Gray, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.GrayAt(x, y).Y > 0 {
				n++
			}
		}
	}
	return n
}

func TestRender_Waiting(t *testing.T) {
	t.Parallel()

	img := Render(nil, "Kalman")
	assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
	assert.Positive(t, lit(img, img.Bounds()))
	assert.Zero(t, lit(img, image.Rect(0, yawBarY, Width, Height)), "no yaw strip without a pose")
}

func TestRender_PoseChangesPixels(t *testing.T) {
	t.Parallel()

	a := Render(&orientation.Pose{Pitch: 10, Roll: -5, Yaw: 0}, "Complementary")
	b := Render(&orientation.Pose{Pitch: 10, Roll: -5, Yaw: 90}, "Complementary")
	assert.NotEqual(t, a.Pix, b.Pix)

	// The roll line is unchanged.
	assert.Equal(t, a.Pix[:14*a.Stride], b.Pix[:14*b.Stride])
}

func TestYawX(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, yawX(-180))
	assert.Equal(t, 63, yawX(0))
	assert.Equal(t, Width-2, yawX(179.9))
	assert.Equal(t, Width-2, yawX(500))
	assert.Equal(t, 1, yawX(math.NaN()))
}

func TestEncodePNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, Render(&orientation.Pose{Yaw: -45}, "")))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Width, Height), decoded.Bounds())
}
