// Package main is an interactive viewer for meshed terrain sections.
//
// Controls: left drag orbits, wheel zooms, WASD/QE pans, 1-4 toggle render
// passes, C toggles facing culling, R regenerates with the next seed.
package main

import (
	"context"
	"fmt"
	gomath "math"
	"os"
	"sort"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/internal/engine/camera"
	"github.com/Faultbox/midgard-mesh/internal/engine/input"
	"github.com/Faultbox/midgard-mesh/internal/engine/native"
	"github.com/Faultbox/midgard-mesh/internal/engine/render"
	"github.com/Faultbox/midgard-mesh/internal/engine/section"
	"github.com/Faultbox/midgard-mesh/internal/engine/shader"
	"github.com/Faultbox/midgard-mesh/internal/engine/upload"
	"github.com/Faultbox/midgard-mesh/internal/engine/window"
	"github.com/Faultbox/midgard-mesh/internal/engine/worker"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

const windowTitle = "Midgard Mesh"

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("sectionview failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type viewer struct {
	cfg      *config.Config
	pool     *worker.Pool
	uploader *upload.Uploader
	program  *shader.Program
	cam      *camera.Orbit

	meshes  []*upload.SectionMesh
	seed    int64
	enabled [render.PassCount]bool
	cull    bool
	quads   int
}

func run(cfg *config.Config) error {
	win, err := window.New(windowTitle, cfg.Viewer)
	if err != nil {
		return err
	}
	defer win.Close()

	program, err := shader.Section()
	if err != nil {
		return fmt.Errorf("section shader: %w", err)
	}
	defer program.Delete()

	alloc, err := native.New(cfg.Meshing.Allocator)
	if err != nil {
		return err
	}

	v := &viewer{
		cfg: cfg,
		pool: worker.NewPool(worker.Options{
			Workers:   cfg.Workers.Count,
			QueueSize: cfg.Workers.QueueSize,
			Allocator: alloc,
		}),
		uploader: upload.NewUploader(),
		program:  program,
		cam:      camera.NewOrbit(),
		seed:     cfg.World.Seed,
		cull:     true,
	}
	for i := range v.enabled {
		v.enabled[i] = true
	}
	defer v.uploader.Destroy()
	defer v.clear()

	if err := v.rebuild(); err != nil {
		return err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(0.53, 0.71, 0.92, 1)

	in := input.New()
	lastTitle := time.Now()
	frames := 0
	for {
		f := in.Poll()
		if f.Quit {
			return nil
		}
		v.cam.Drag(f.DragX, f.DragY)
		if f.Wheel != 0 {
			v.cam.Zoom(f.Wheel)
		}
		v.cam.Pan(f.Forward, f.Right, f.Up)
		for pass, toggled := range f.TogglePass {
			if toggled {
				v.enabled[pass] = !v.enabled[pass]
				logger.Info("pass toggled",
					zap.Stringer("pass", render.Pass(pass)),
					zap.Bool("enabled", v.enabled[pass]))
			}
		}
		if f.ToggleCull {
			v.cull = !v.cull
			logger.Info("facing culling toggled", zap.Bool("enabled", v.cull))
		}
		if f.Rebuild {
			v.seed++
			if err := v.rebuild(); err != nil {
				return err
			}
		}

		width, height := win.Size()
		draws := v.draw(width, height)
		win.SwapBuffers()

		frames++
		if since := time.Since(lastTitle); since >= time.Second {
			win.SetTitle(fmt.Sprintf("%s | seed %d | %d sections | %d quads | %d draws | %.0f fps",
				windowTitle, v.seed, len(v.meshes), v.quads, draws, float64(frames)/since.Seconds()))
			frames = 0
			lastTitle = time.Now()
		}
	}
}

// rebuild regenerates the terrain for the current seed and replaces every
// uploaded mesh.
func (v *viewer) rebuild() error {
	v.clear()

	start := time.Now()
	gen := section.NewGenerator(section.DefaultGeneratorConfig(v.seed))
	sections := gen.GenerateArea(v.cfg.World.Radius, v.cfg.World.Height)

	results, err := v.pool.BuildAll(context.Background(), sections)
	if err != nil {
		return fmt.Errorf("building sections: %w", err)
	}

	var failed int
	v.quads = 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			continue
		}
		v.quads += r.Info.TotalQuads()
		if len(r.Parts) == 0 {
			continue
		}
		v.meshes = append(v.meshes, v.uploader.Upload(r.Coord, r.Parts))
		r.Parts = nil
	}

	radius := float32(v.cfg.World.Radius)
	lo := math.Vec3{X: -radius * section.Size, Z: -radius * section.Size}
	hi := math.Vec3{
		X: (radius + 1) * section.Size,
		Y: float32(v.cfg.World.Height * section.Size),
		Z: (radius + 1) * section.Size,
	}
	v.cam.Fit(lo, hi)

	logger.Info("sections meshed",
		zap.Int64("seed", v.seed),
		zap.Int("sections", len(sections)),
		zap.Int("uploaded", len(v.meshes)),
		zap.Int("failed", failed),
		zap.Int("quads", v.quads),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (v *viewer) clear() {
	for _, m := range v.meshes {
		m.Destroy()
	}
	v.meshes = v.meshes[:0]
}

// draw renders every enabled pass in pass order and returns the number of
// draw calls issued.
func (v *viewer) draw(width, height int) int {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	aspect := float32(width) / float32(max(height, 1))
	proj := math.Perspective(float32(gomath.Pi/3), aspect, 0.1, 2048)
	eye := v.cam.Eye()

	v.program.Use()
	v.program.SetMat4("uViewProj", proj.Mul(v.cam.View()))

	draws := 0
	for _, pass := range render.Passes() {
		if !v.enabled[pass] {
			continue
		}
		meshes := v.meshes
		switch pass {
		case render.PassSolid:
			v.program.SetFloat("uAlphaCutoff", 0)
		case render.PassCutout, render.PassCutoutMipped:
			v.program.SetFloat("uAlphaCutoff", 0.5)
			gl.Disable(gl.CULL_FACE)
		case render.PassTranslucent:
			v.program.SetFloat("uAlphaCutoff", 0)
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
			gl.DepthMask(false)
			meshes = backToFront(v.meshes, eye)
		}

		for _, m := range meshes {
			if !m.HasPass(pass) {
				continue
			}
			v.program.SetVec3("uOrigin", m.Origin())
			if v.cull {
				draws += m.Draw(pass, eye)
			} else {
				draws += m.DrawFacings(pass, render.FacingMaskAll)
			}
		}

		gl.Enable(gl.CULL_FACE)
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}
	return draws
}

func backToFront(meshes []*upload.SectionMesh, eye math.Vec3) []*upload.SectionMesh {
	sorted := make([]*upload.SectionMesh, len(meshes))
	copy(sorted, meshes)
	dist := func(m *upload.SectionMesh) float32 {
		c := m.Bounds.Min.Add(m.Bounds.Max).Scale(0.5)
		d := c.Sub(eye)
		return d.Dot(d)
	}
	sort.Slice(sorted, func(i, j int) bool { return dist(sorted[i]) > dist(sorted[j]) })
	return sorted
}
