package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/ventsim/internal/dynamo"
)

// Scatter holds the points of a 2D plot, e.g. a pressure-volume loop.
type Scatter struct {
	Points []struct{ X, Y float64 }
}

func NewScatter(xs, ys dynamo.Series) *Scatter {
	n := min(len(xs), len(ys))
	sc := &Scatter{Points: make([]struct{ X, Y float64 }, n)}
	for i := 0; i < n; i++ {
		sc.Points[i].X = xs[i]
		sc.Points[i].Y = ys[i]
	}
	return sc
}

// ScatterToASCII draws the points on a width×height character canvas
func ScatterToASCII(sc *Scatter, width, height int) string {
	if sc == nil || len(sc.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := sc.Points[0].X, sc.Points[0].X
	minY, maxY := sc.Points[0].Y, sc.Points[0].Y

	for _, p := range sc.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// 10% padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range sc.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which s rises through
// threshold. On a volume trace with threshold at its mean these are the
// starts of successive breaths.
func Crossings(s dynamo.Series, dt, threshold float64) []float64 {
	var times []float64
	for i := 1; i < len(s); i++ {
		prev, curr := s[i-1], s[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			times = append(times, (float64(i-1)+frac)*dt)
		}
	}
	return times
}

// BreathPeriod is the mean spacing of upward mean crossings of s, or 0
// when fewer than two crossings occur.
func BreathPeriod(s dynamo.Series, dt float64) float64 {
	if len(s) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range s {
		mean += v
	}
	mean /= float64(len(s))

	c := Crossings(s, dt, mean)
	if len(c) < 2 {
		return 0
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1)
}
