package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trailmatch/internal/geo"
)

// NamedPolyline labels one lat/lng sequence for PolylinesPNG, e.g. a
// section's consensus polyline or one member activity's contributing
// portion.
type NamedPolyline struct {
	Label  string
	Points []geo.Point
}

// PolylinesPNG renders each of lines over a shared lng/lat plane and saves
// it to path, for offline debugging of a section's consensus polyline
// against its member overlaps, or a route group's overlaid members.
// Longitude is plotted on X and latitude on Y since both are already
// small-angle planar coordinates at the scale a single section spans.
func PolylinesPNG(title string, lines []NamedPolyline, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	for i, line := range lines {
		if len(line.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(line.Points))
		for j, pt := range line.Points {
			xys[j].X = pt.Lng
			xys[j].Y = pt.Lat
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("viz: building line %q: %w", line.Label, err)
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(line.Label, l)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
