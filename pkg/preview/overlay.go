// Package preview draws landmark overlays and shows them in a window or as JPEG frames.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-eyemouse/pkg/geometry"
	"github.com/teslashibe/go-eyemouse/pkg/landmarks"
)

var (
	eyeColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	boxColor  = color.RGBA{R: 255, G: 160, B: 0, A: 255}
	gazeColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	textColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Draw overlays face boxes, closed eye contours and the gaze point on img
func Draw(img *gocv.Mat, faces []landmarks.Face) {
	for i := range faces {
		f := &faces[i]
		b := f.Box
		gocv.Rectangle(img, image.Rect(int(b.X), int(b.Y), int(b.X+b.W), int(b.Y+b.H)), boxColor, 1)

		left, right := f.LeftEye(), f.RightEye()
		contours := gocv.NewPointsVectorFromPoints([][]image.Point{
			contourPoints(left),
			contourPoints(right),
		})
		gocv.Polylines(img, contours, true, eyeColor, 1)
		contours.Close()

		gaze := geometry.GazePoint(left, right)
		gocv.Circle(img, image.Pt(int(gaze.X), int(gaze.Y)), 3, gazeColor, -1)
	}
}

func contourPoints(c geometry.EyeContour) []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = image.Pt(int(p.X), int(p.Y))
	}
	return pts
}

// fpsCounter measures display rate over one-second windows
type fpsCounter struct {
	last  time.Time
	count int
	fps   float64
}

func (c *fpsCounter) tick(now time.Time) float64 {
	if c.last.IsZero() {
		c.last = now
	}
	c.count++
	if elapsed := now.Sub(c.last); elapsed >= time.Second {
		c.fps = float64(c.count) / elapsed.Seconds()
		c.count = 0
		c.last = now
	}
	return c.fps
}

func drawFPS(img *gocv.Mat, fps float64) {
	gocv.PutText(img, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 30),
		gocv.FontHersheyPlain, 2, textColor, 2)
}
