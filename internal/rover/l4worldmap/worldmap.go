package l4worldmap

import (
	"fmt"
	"image"
	"image/color"
)

// Channel selects one of the map's independent accumulation layers. The
// numbering matches the RGB layout used when the map is displayed.
type Channel int

const (
	ChannelObstacle  Channel = 0 // red
	ChannelSample    Channel = 1 // green
	ChannelNavigable Channel = 2 // blue
)

func (c Channel) String() string {
	switch c {
	case ChannelObstacle:
		return "obstacle"
	case ChannelSample:
		return "sample"
	case ChannelNavigable:
		return "navigable"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Channels lists every map channel.
var Channels = []Channel{ChannelObstacle, ChannelSample, ChannelNavigable}

// WorldMap is a square grid of Size x Size cells with three channels per
// cell. Pix is laid out row-major by Y then X, three bytes per cell.
type WorldMap struct {
	Size int
	Pix  []uint8
}

// NewWorldMap allocates an empty map.
func NewWorldMap(size int) *WorldMap {
	return &WorldMap{Size: size, Pix: make([]uint8, size*size*3)}
}

func (m *WorldMap) index(x, y int, ch Channel) int {
	return (y*m.Size+x)*3 + int(ch)
}

// At returns the channel value at cell (x, y). Out-of-range cells read as 0.
func (m *WorldMap) At(x, y int, ch Channel) uint8 {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return 0
	}
	return m.Pix[m.index(x, y, ch)]
}

// Set writes v to cell (x, y), clamping the coordinates onto the grid.
func (m *WorldMap) Set(x, y int, ch Channel, v uint8) {
	m.Pix[m.index(m.clamp(x), m.clamp(y), ch)] = v
}

func (m *WorldMap) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= m.Size {
		return m.Size - 1
	}
	return i
}

// Count returns the number of non-zero cells in a channel.
func (m *WorldMap) Count(ch Channel) int {
	n := 0
	for i := int(ch); i < len(m.Pix); i += 3 {
		if m.Pix[i] != 0 {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy for read-only publication.
func (m *WorldMap) Snapshot() *WorldMap {
	cp := &WorldMap{Size: m.Size, Pix: make([]uint8, len(m.Pix))}
	copy(cp.Pix, m.Pix)
	return cp
}

// Image renders the map as an RGBA image with world Y increasing upward.
func (m *WorldMap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Size, m.Size))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			img.SetRGBA(x, m.Size-1-y, color.RGBA{
				R: m.At(x, y, ChannelObstacle),
				G: m.At(x, y, ChannelSample),
				B: m.At(x, y, ChannelNavigable),
				A: 255,
			})
		}
	}
	return img
}
