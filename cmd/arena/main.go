package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/spincap/spinner-arena/internal/arena"
)

const frameDT = 1.0 / 60

var spinnerColors = [2]color.RGBA{
	{R: 220, G: 60, B: 40, A: 255},
	{R: 40, G: 110, B: 230, A: 255},
}

// particle is one cosmetic spark spawned from a feedback event.
type particle struct {
	x, y   float64
	vx, vy float64
	life   float64
	max    float64
	col    color.RGBA
}

// App renders a match and its cosmetic feedback layer. It owns zero
// simulation state beyond the Match value itself.
type App struct {
	match *arena.Match

	particles []particle
	shake     float64
	rng       *rand.Rand // cosmetic only, never touches the simulation
}

func newApp(m *arena.Match) *App {
	app := &App{
		match: m,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- cosmetic only
	}
	m.Subscribe(app.onEvent)
	return app
}

// onEvent translates simulation events into particles and screen shake.
// Runs synchronously inside Match.Step, so it only appends to local state.
func (app *App) onEvent(ev arena.Event) {
	switch e := ev.(type) {
	case arena.ImpactEvent:
		app.spawnSparks(e.X, e.Y, 6+int(e.Impact01*18), 60+240*e.Impact01,
			color.RGBA{R: 255, G: 210, B: 80, A: 255})
		app.shake = math.Max(app.shake, e.Impact01*7)
	case arena.BurstEvent:
		app.spawnSparks(e.X, e.Y, 48, 420, color.RGBA{R: 255, G: 120, B: 40, A: 255})
		app.shake = math.Max(app.shake, 14)
	case arena.BoundaryScrapeEvent:
		app.spawnSparks(e.X, e.Y, 3, 90, color.RGBA{R: 160, G: 220, B: 255, A: 255})
	case arena.CrossoverEvent:
		col := color.RGBA{R: 80, G: 230, B: 120, A: 255} // bullish green
		if !e.Bullish {
			col = color.RGBA{R: 230, G: 70, B: 70, A: 255}
		}
		sp := app.findSpinner(e.SpinnerID)
		if sp != nil {
			app.spawnSparks(sp.X, sp.Y, 12, 150, col)
		}
	}
}

func (app *App) findSpinner(id string) *arena.Spinner {
	for _, s := range app.match.Spinners() {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (app *App) spawnSparks(x, y float64, n int, speed float64, col color.RGBA) {
	for i := 0; i < n; i++ {
		ang := app.rng.Float64() * 2 * math.Pi
		v := speed * (0.4 + 0.6*app.rng.Float64())
		life := 0.25 + 0.45*app.rng.Float64()
		app.particles = append(app.particles, particle{
			x: x, y: y,
			vx: math.Cos(ang) * v, vy: math.Sin(ang) * v,
			life: life, max: life,
			col: col,
		})
	}
}

func (app *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		app.match.Rematch()
		app.particles = app.particles[:0]
		app.shake = 0
	}

	// Physics runs at real frame time; the feedback layer runs on dilated
	// time so a hit pause reads as a freeze-frame without touching the sim.
	app.match.Step(frameDT)
	fdt := frameDT * app.match.FeedbackTimeScale()

	alive := app.particles[:0]
	for _, p := range app.particles {
		p.life -= fdt
		if p.life <= 0 {
			continue
		}
		p.x += p.vx * fdt
		p.y += p.vy * fdt
		p.vx *= 0.96
		p.vy *= 0.96
		alive = append(alive, p)
	}
	app.particles = alive
	app.shake = math.Max(0, app.shake-30*fdt)
	return nil
}

func (app *App) Draw(screen *ebiten.Image) {
	sx := (app.rng.Float64()*2 - 1) * app.shake
	sy := (app.rng.Float64()*2 - 1) * app.shake

	geo := app.match.Boundary().Geometry()
	switch geo.Kind {
	case "ring":
		app.drawRing(screen, geo, sx, sy)
	case "corridor":
		app.drawCorridor(screen, geo, sx, sy)
	}

	for i, s := range app.match.Spinners() {
		app.drawSpinner(screen, s, spinnerColors[i], sx, sy)
	}

	for _, p := range app.particles {
		c := p.col
		c.A = uint8(255 * p.life / p.max)
		vector.DrawFilledCircle(screen, float32(p.x+sx), float32(p.y+sy), 2, c, true)
	}

	app.drawHUD(screen)
}

// drawRing renders the containment field. The edge flickers as instability
// ramps up.
func (app *App) drawRing(screen *ebiten.Image, geo arena.BoundaryGeometry, sx, sy float64) {
	flicker := 1.0
	if inst := app.match.Instability(); inst > 0 {
		flicker = 1 - inst*0.5*app.rng.Float64()
	}
	edge := color.RGBA{R: 120, G: 200, B: 255, A: uint8(220 * flicker)}
	soft := color.RGBA{R: 120, G: 200, B: 255, A: 40}
	vector.StrokeCircle(screen, float32(geo.CenterX+sx), float32(geo.CenterY+sy),
		float32(geo.Radius), 2.5, edge, true)
	vector.StrokeCircle(screen, float32(geo.CenterX+sx), float32(geo.CenterY+sy),
		float32(geo.Radius*0.82), 1, soft, true)
}

// drawCorridor renders both curve walls as polylines.
func (app *App) drawCorridor(screen *ebiten.Image, geo arena.BoundaryGeometry, sx, sy float64) {
	stress := uint8(160 + 80*app.match.Instability())
	top := color.RGBA{R: stress, G: 80, B: 200, A: 255}
	bottom := color.RGBA{R: 80, G: stress, B: 160, A: 255}
	step := geo.Width / float64(len(geo.TopWall)-1)
	for i := 0; i+1 < len(geo.TopWall); i++ {
		x0 := float64(i) * step
		x1 := float64(i+1) * step
		ebitenutil.DrawLine(screen, x0+sx, geo.TopWall[i]+sy, x1+sx, geo.TopWall[i+1]+sy, top)
		ebitenutil.DrawLine(screen, x0+sx, geo.BottomWall[i]+sy, x1+sx, geo.BottomWall[i+1]+sy, bottom)
	}
}

// drawSpinner renders a spinner as a filled circle with a rotation spoke —
// a stand-in for the dashboard's sprite compositor, which replaces this in
// the real client.
func (app *App) drawSpinner(screen *ebiten.Image, s *arena.Spinner, col color.RGBA, sx, sy float64) {
	if !s.Alive {
		// Grey cross where it died.
		grey := color.RGBA{R: 110, G: 110, B: 110, A: 200}
		ebitenutil.DrawLine(screen, s.X-6+sx, s.Y-6+sy, s.X+6+sx, s.Y+6+sy, grey)
		ebitenutil.DrawLine(screen, s.X+6+sx, s.Y-6+sy, s.X-6+sx, s.Y+6+sy, grey)
		return
	}
	vector.DrawFilledCircle(screen, float32(s.X+sx), float32(s.Y+sy), float32(s.Radius), col, true)
	hx := s.X + math.Cos(s.Heading)*s.Radius
	hy := s.Y + math.Sin(s.Heading)*s.Radius
	ebitenutil.DrawLine(screen, s.X+sx, s.Y+sy, hx+sx, hy+sy,
		color.RGBA{R: 255, G: 255, B: 255, A: 200})
}

func (app *App) drawHUD(screen *ebiten.Image) {
	w := app.match.Config().Width
	spinners := app.match.Spinners()
	for i, s := range spinners {
		x := 12.0
		if i == 1 {
			x = w - 172
		}
		app.drawBar(screen, x, 12, s.Integrity, color.RGBA{R: 90, G: 220, B: 90, A: 255})
		app.drawBar(screen, x, 24, s.Spin/s.BaseAngularRate, color.RGBA{R: 230, G: 200, B: 70, A: 255})
		ebitenutil.DebugPrintAt(screen, s.Ticker, int(x), 34)
	}

	switch app.match.Phase() {
	case arena.PhaseCountdown:
		msg := fmt.Sprintf("%d", int(math.Ceil(app.match.CountdownLeft())))
		ebitenutil.DebugPrintAt(screen, msg, int(w/2)-4, 40)
	case arena.PhaseEnded:
		msg := "DRAW - press R"
		if id, ok := app.match.Winner(); ok {
			msg = id + " WINS - press R"
		}
		ebitenutil.DebugPrintAt(screen, msg, int(w/2)-60, 40)
	}
}

func (app *App) drawBar(screen *ebiten.Image, x, y, frac float64, col color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), 160, 8,
		color.RGBA{R: 40, G: 40, B: 40, A: 255}, false)
	if frac > 0 {
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(160*frac), 8, col, false)
	}
}

func (app *App) Layout(_, _ int) (int, int) {
	cfg := app.match.Config()
	return int(cfg.Width), int(cfg.Height)
}

func main() {
	var tickerA, tickerB, variantName, telemetryPath string
	var seed int64
	flag.StringVar(&tickerA, "a", "NVDA", "ticker for the left spinner")
	flag.StringVar(&tickerB, "b", "KO", "ticker for the right spinner")
	flag.StringVar(&variantName, "variant", "ring", "arena variant (ring, corridor)")
	flag.StringVar(&telemetryPath, "telemetry", "", "telemetry JSON file (default: built-in sample set)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "simulation RNG seed")
	flag.Parse()

	variant, err := arena.ParseVariant(variantName)
	if err != nil {
		log.Fatal(err)
	}

	var adapter arena.TelemetryAdapter = arena.SampleTelemetry()
	if telemetryPath != "" {
		adapter, err = arena.LoadTelemetryFile(telemetryPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	cfg := arena.DefaultMatchConfig()
	cfg.Variant = variant
	cfg.Seed = seed
	m, err := arena.StartMatch(adapter, tickerA, tickerB, cfg)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle(fmt.Sprintf("Spinner Arena — %s vs %s", tickerA, tickerB))
	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	if err := ebiten.RunGame(newApp(m)); err != nil {
		log.Fatal(err)
	}
}
