// Package landmarks defines detected faces and the standard 68-point landmark layout.
package landmarks

import (
	"fmt"

	"github.com/teslashibe/go-eyemouse/pkg/geometry"
)

// Landmark index ranges in the 68-point (iBUG 300-W) convention.
const (
	JawStart       = 0
	RightBrowStart = 17
	LeftBrowStart  = 22
	NoseStart      = 27
	LeftEyeStart   = 36 // 36-41
	RightEyeStart  = 42 // 42-47
	MouthStart     = 48
	NumPoints      = 68
)

// Box is a face bounding box in pixel space
type Box struct {
	X, Y float64 // top-left
	W, H float64
}

// Center returns the center point of the box
func (b Box) Center() geometry.Point {
	return geometry.Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Area returns the area of the box
func (b Box) Area() float64 {
	return b.W * b.H
}

// Face is one detected face with its 68 landmarks in camera pixel space
type Face struct {
	Box    Box
	Points [NumPoints]geometry.Point
	Score  float64
}

// FromSlice builds a Face from exactly 68 points
func FromSlice(box Box, score float64, pts []geometry.Point) (Face, error) {
	if len(pts) != NumPoints {
		return Face{}, fmt.Errorf("landmarks: expected %d points, got %d", NumPoints, len(pts))
	}
	f := Face{Box: box, Score: score}
	copy(f.Points[:], pts)
	return f, nil
}

// LeftEye returns points 36-41
func (f *Face) LeftEye() geometry.EyeContour {
	return f.contour(LeftEyeStart)
}

// RightEye returns points 42-47
func (f *Face) RightEye() geometry.EyeContour {
	return f.contour(RightEyeStart)
}

func (f *Face) contour(start int) geometry.EyeContour {
	var c geometry.EyeContour
	copy(c[:], f.Points[start:start+len(c)])
	return c
}
