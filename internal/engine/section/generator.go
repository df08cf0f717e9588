package section

import (
	"github.com/aquilax/go-perlin"
)

// GeneratorConfig tunes terrain generation.
type GeneratorConfig struct {
	Seed       int64
	BaseHeight int     // mean surface height in blocks
	Amplitude  float64 // height variation in blocks
	Scale      float64 // blocks per noise unit
	SeaLevel   int
}

// DefaultGeneratorConfig returns gently rolling terrain around sea level.
func DefaultGeneratorConfig(seed int64) GeneratorConfig {
	return GeneratorConfig{
		Seed:       seed,
		BaseHeight: 20,
		Amplitude:  14,
		Scale:      48,
		SeaLevel:   16,
	}
}

// Generator fills sections with perlin-noise terrain. Output depends only
// on the seed and coordinates, so neighbouring sections line up.
type Generator struct {
	cfg   GeneratorConfig
	noise *perlin.Perlin
}

// NewGenerator creates a terrain generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	alpha := 2.0  // smoothing
	beta := 2.0   // frequency
	n := int32(3) // octaves
	return &Generator{
		cfg:   cfg,
		noise: perlin.NewPerlin(alpha, beta, n, cfg.Seed),
	}
}

// Height returns the surface height of the world column (x, z).
func (g *Generator) Height(x, z int) int {
	v := g.noise.Noise2D(float64(x)/g.cfg.Scale, float64(z)/g.cfg.Scale)
	return g.cfg.BaseHeight + int(v*g.cfg.Amplitude)
}

const (
	treeReach   = 2 // leaf radius around the trunk
	trunkHeight = 4
)

// Generate builds the section at c.
func (g *Generator) Generate(c Coord) *Section {
	s := New(c)
	ox, oy, oz := c.Origin()

	// Heights for the section plus a margin so trees near the border
	// contribute leaves to this section.
	const span = Size + 2*treeReach
	var heights [span][span]int
	for i := 0; i < span; i++ {
		for j := 0; j < span; j++ {
			heights[i][j] = g.Height(ox+i-treeReach, oz+j-treeReach)
		}
	}
	height := func(lx, lz int) int {
		return heights[lx+treeReach][lz+treeReach]
	}

	for lx := 0; lx < Size; lx++ {
		for lz := 0; lz < Size; lz++ {
			wx, wz := ox+lx, oz+lz
			h := height(lx, lz)
			for ly := 0; ly < Size; ly++ {
				wy := oy + ly
				if id := g.terrain(wx, wy, wz, h); id != Air {
					s.Set(lx, ly, lz, id)
				}
			}
		}
	}

	// Trees and plants.
	for tx := -treeReach; tx < Size+treeReach; tx++ {
		for tz := -treeReach; tz < Size+treeReach; tz++ {
			wx, wz := ox+tx, oz+tz
			h := height(tx, tz)
			if h <= g.cfg.SeaLevel+1 {
				continue
			}
			switch r := columnHash(g.cfg.Seed, wx, wz) % 97; {
			case r == 0:
				g.placeTree(s, tx, h+1-oy, tz)
			case r%9 == 1:
				if InBounds(tx, h+1-oy, tz) {
					s.Set(tx, h+1-oy, tz, TallGrass)
				}
			}
		}
	}
	return s
}

func (g *Generator) terrain(wx, wy, wz, h int) BlockID {
	switch {
	case wy > h:
		if wy <= g.cfg.SeaLevel {
			return Water
		}
		return Air
	case wy == h:
		if h <= g.cfg.SeaLevel+1 {
			return Sand
		}
		return Grass
	case wy >= h-3:
		return Dirt
	default:
		return Stone
	}
}

// placeTree writes the parts of a tree rooted at the local position that
// fall inside s.
func (g *Generator) placeTree(s *Section, x, y, z int) {
	set := func(lx, ly, lz int, id BlockID) {
		if InBounds(lx, ly, lz) && s.Get(lx, ly, lz) == Air {
			s.Set(lx, ly, lz, id)
		}
	}
	for dy := 0; dy < trunkHeight; dy++ {
		set(x, y+dy, z, Log)
	}
	for dy := trunkHeight - 2; dy <= trunkHeight; dy++ {
		r := treeReach
		if dy == trunkHeight {
			r = 1
		}
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				set(x+dx, y+dy, z+dz, Leaves)
			}
		}
	}
}

// columnHash mixes a column position into a well distributed value.
func columnHash(seed int64, x, z int) uint64 {
	h := uint64(seed) ^ uint64(int64(x))*0x9E3779B97F4A7C15 ^ uint64(int64(z))*0xC2B2AE3D27D4EB4F
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return h
}

// GenerateArea generates every section of Area(radius, height).
func (g *Generator) GenerateArea(radius, height int) []*Section {
	coords := Area(radius, height)
	out := make([]*Section, len(coords))
	for i, c := range coords {
		out[i] = g.Generate(c)
	}
	return out
}
