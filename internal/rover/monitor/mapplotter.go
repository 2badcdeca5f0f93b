package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/rover.nav/internal/rover"
	"github.com/banshee-data/rover.nav/internal/rover/l4worldmap"
)

var channelColors = map[l4worldmap.Channel]color.Color{
	l4worldmap.ChannelObstacle:  color.RGBA{R: 220, G: 40, B: 40, A: 255},
	l4worldmap.ChannelSample:    color.RGBA{R: 40, G: 180, B: 40, A: 255},
	l4worldmap.ChannelNavigable: color.RGBA{R: 40, G: 90, B: 220, A: 255},
}

// MapPlotter records the rover's trajectory during a run and renders it over
// the world map afterwards.
type MapPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	poses     []rover.Pose
}

// NewMapPlotter creates a disabled plotter.
func NewMapPlotter() *MapPlotter {
	return &MapPlotter{}
}

// Start enables recording for a new run writing into outputDir.
func (mp *MapPlotter) Start(outputDir string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	mp.outputDir = outputDir
	mp.poses = mp.poses[:0]
	mp.enabled = true
	return nil
}

// IsEnabled reports whether the plotter is recording.
func (mp *MapPlotter) IsEnabled() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.enabled
}

// RecordPose appends a pose to the trajectory. No-op when disabled.
func (mp *MapPlotter) RecordPose(p rover.Pose) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if !mp.enabled {
		return
	}
	mp.poses = append(mp.poses, p)
}

// PoseCount returns the number of recorded poses.
func (mp *MapPlotter) PoseCount() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.poses)
}

// Generate writes the world map plot and raster into the output directory
// and stops recording. Returns the files written.
func (mp *MapPlotter) Generate(m *l4worldmap.WorldMap) ([]string, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.enabled {
		return nil, fmt.Errorf("plotter not started")
	}
	mp.enabled = false

	plotFile := filepath.Join(mp.outputDir, "worldmap_plot.png")
	if err := PlotWorldMap(m, mp.poses, plotFile); err != nil {
		return nil, err
	}
	rasterFile := filepath.Join(mp.outputDir, "worldmap.png")
	if err := WritePNG(m.Image(), rasterFile); err != nil {
		return nil, err
	}
	return []string{plotFile, rasterFile}, nil
}

// PlotWorldMap scatters every marked cell of m by channel, overlays the
// trajectory when given, and saves the plot to path.
func PlotWorldMap(m *l4worldmap.WorldMap, trajectory []rover.Pose, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("World Map (%d×%d)", m.Size, m.Size)
	p.X.Label.Text = "X (cells)"
	p.Y.Label.Text = "Y (cells)"
	p.X.Min, p.X.Max = 0, float64(m.Size)
	p.Y.Min, p.Y.Max = 0, float64(m.Size)

	for _, ch := range l4worldmap.Channels {
		pts := channelPoints(m, ch)
		if len(pts) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("%s scatter: %w", ch, err)
		}
		scatter.GlyphStyle.Color = channelColors[ch]
		scatter.GlyphStyle.Radius = vg.Points(1)
		scatter.GlyphStyle.Shape = draw.BoxGlyph{}
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (%d)", ch, len(pts)), scatter)
	}

	if len(trajectory) > 0 {
		pts := make(plotter.XYs, len(trajectory))
		for i, pose := range trajectory {
			pts[i] = plotter.XY{X: pose.X, Y: pose.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("trajectory line: %w", err)
		}
		line.Color = color.Black
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("trajectory", line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save world map plot: %w", err)
	}
	return nil
}

// channelPoints lists the cell centres of every nonzero cell on ch.
func channelPoints(m *l4worldmap.WorldMap, ch l4worldmap.Channel) plotter.XYs {
	pts := make(plotter.XYs, 0, m.Count(ch))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if m.At(x, y, ch) > 0 {
				pts = append(pts, plotter.XY{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			}
		}
	}
	return pts
}
