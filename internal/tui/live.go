package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/ventsim/internal/experiment"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Playback replays a finished run as two inflating lungs and a pressure
// gauge, one frame per stride of samples.
type Playback struct {
	res       *experiment.Result
	out       io.Writer
	frameRate int
	canvas    [][]rune
	vmax      float64
	pmin      float64
	pmax      float64
}

func NewPlayback(res *experiment.Result, out io.Writer, frameRate int) *Playback {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}

	if frameRate <= 0 {
		frameRate = 30
	}

	pb := &Playback{res: res, out: out, frameRate: frameRate, canvas: canvas}
	for i := range res.VD {
		pb.vmax = math.Max(pb.vmax, math.Max(math.Abs(res.VD[i]), math.Abs(res.VE[i])))
	}
	p := res.Pressure()
	pb.pmin, pb.pmax = p[0], p[0]
	for _, v := range p {
		pb.pmin = math.Min(pb.pmin, v)
		pb.pmax = math.Max(pb.pmax, v)
	}
	return pb
}

// Run plays the result in real time scaled by speed. Frames are drawn at
// most frameRate times per second.
func (pb *Playback) Run(speed float64) {
	if speed <= 0 {
		speed = 1
	}
	frame := time.Second / time.Duration(pb.frameRate)
	stride := int(math.Max(1, math.Round(speed/(float64(pb.frameRate)*pb.res.Params.Dt))))

	fmt.Fprint(pb.out, hideCursor)
	defer fmt.Fprint(pb.out, showCursor)

	for i := 0; i < pb.res.SampleCount(); i += stride {
		start := time.Now()
		fmt.Fprint(pb.out, pb.Frame(i))
		if d := frame - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}
}

// Frame renders sample i.
func (pb *Playback) Frame(i int) string {
	pb.clear()

	cy := height / 2
	pb.drawLung(width/4, cy, pb.res.VD[i])
	pb.drawLung(3*width/4, cy, pb.res.VE[i])
	pb.drawTrachea(cy)
	pb.drawGauge(pb.res.Pressure()[i])

	return pb.render(i)
}

func (pb *Playback) clear() {
	for y := range pb.canvas {
		for x := range pb.canvas[y] {
			pb.canvas[y][x] = ' '
		}
	}
}

func (pb *Playback) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		pb.canvas[y][x] = c
	}
}

func (pb *Playback) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		pb.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawLung draws an ellipse whose radii grow with volume.
func (pb *Playback) drawLung(cx, cy int, v float64) {
	frac := 0.0
	if pb.vmax > 0 {
		frac = math.Max(0, v) / pb.vmax
	}
	rx := 3 + frac*float64(width/4-5)
	ry := 2 + frac*float64(height/2-4)

	for a := 0.0; a < 2*math.Pi; a += 0.05 {
		pb.set(cx+int(rx*math.Cos(a)), cy+int(ry*math.Sin(a)), '●')
	}
}

func (pb *Playback) drawTrachea(cy int) {
	mid := width / 2
	pb.line(mid, 0, mid, cy-2, '│')
	pb.line(mid, cy-2, width/4, cy-2, '─')
	pb.line(mid, cy-2, 3*width/4, cy-2, '─')
}

func (pb *Playback) drawGauge(p float64) {
	span := pb.pmax - pb.pmin
	if span == 0 {
		span = 1
	}
	filled := int((p - pb.pmin) / span * float64(width-10))
	for x := 0; x < width-10; x++ {
		c := '─'
		if x < filled {
			c = '█'
		}
		pb.set(5+x, height-1, c)
	}
}

func (pb *Playback) render(i int) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", pb.res.Params.Mode, pb.res.Times[i]))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range pb.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  V_D=%.3f  V_E=%.3f  V=%.3f  P=%.2f\n",
		pb.res.VD[i], pb.res.VE[i], pb.res.VTotal[i], pb.res.Pressure()[i]))

	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
