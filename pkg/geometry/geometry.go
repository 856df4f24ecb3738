// Package geometry provides the pure eye-contour math used for gaze and blink tracking.
package geometry

import (
	"errors"
	"math"
)

// ErrDegenerateContour is returned when an eye contour has no horizontal spread,
// which would make the aspect ratio undefined.
var ErrDegenerateContour = errors.New("geometry: degenerate eye contour")

// minCornerDistance is the smallest corner-to-corner distance treated as a real eye.
const minCornerDistance = 1e-9

// Point represents a 2D point in pixel space
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Scale multiplies both coordinates by k
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// EyeContour is the six-point eye outline of the 68-point landmark scheme:
//
//	0: outer corner, 1: upper lid near, 2: upper lid far,
//	3: inner corner, 4: lower lid far,  5: lower lid near
type EyeContour [6]Point

// Center returns the arithmetic mean of the six contour points
func (c EyeContour) Center() Point {
	var sx, sy float64
	for _, p := range c {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / float64(len(c)), Y: sy / float64(len(c))}
}

// Scale returns the contour with every point multiplied by k
func (c EyeContour) Scale(k float64) EyeContour {
	var out EyeContour
	for i, p := range c {
		out[i] = p.Scale(k)
	}
	return out
}

// EyeAspectRatio computes (|p1-p5| + |p2-p4|) / (2*|p0-p3|).
// The ratio drops toward zero as the lids close.
func EyeAspectRatio(c EyeContour) (float64, error) {
	horizontal := Distance(c[0], c[3])
	if horizontal < minCornerDistance || math.IsNaN(horizontal) {
		return 0, ErrDegenerateContour
	}
	vertical := Distance(c[1], c[5]) + Distance(c[2], c[4])
	return vertical / (2 * horizontal), nil
}

// EyeCenter returns the center of an eye contour
func EyeCenter(c EyeContour) Point {
	return c.Center()
}

// GazePoint returns the midpoint of the two eye centers
func GazePoint(left, right EyeContour) Point {
	return Midpoint(left.Center(), right.Center())
}

// Interp maps x linearly from [inMin, inMax] to [outMin, outMax].
// Values outside the input domain clamp to the nearest output bound.
func Interp(x, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}
