package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ventsim/internal/metrics"
)

// Path is one stroked polyline in a hand-written SVG.
type Path struct {
	Loop   metrics.Loop
	Stroke string
}

// LoopsToSVG draws pressure-volume loops as SVG paths sharing one set of
// bounds, volume on x and pressure on y.
func LoopsToSVG(paths []Path, width, height int) string {
	var pts []metrics.Point
	for _, p := range paths {
		pts = append(pts, p.Loop...)
	}
	if len(pts) < 2 {
		return ""
	}

	minX, maxX := pts[0].V, pts[0].V
	minY, maxY := pts[0].P, pts[0].P
	for _, p := range pts {
		minX = math.Min(minX, p.V)
		maxX = math.Max(maxX, p.V)
		minY = math.Min(minY, p.P)
		maxY = math.Max(maxY, p.P)
	}

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

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, path := range paths {
		if len(path.Loop) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, path.Stroke))
		for i, p := range path.Loop {
			x := (p.V - minX) / rangeX * float64(width)
			y := float64(height) - (p.P-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// PVLoopsToSVG renders every loop of a run.
func PVLoopsToSVG(loops metrics.PVLoops, width, height int) string {
	return LoopsToSVG([]Path{
		{Loop: loops.Single, Stroke: "#ffa500"},
		{Loop: loops.Total, Stroke: "#00ff00"},
		{Loop: loops.Right, Stroke: "#ff4040"},
		{Loop: loops.Left, Stroke: "#40a0ff"},
	}, width, height)
}
