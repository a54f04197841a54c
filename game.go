package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/trapline/choreo"
	"github.com/milk9111/trapline/common"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
	"github.com/milk9111/trapline/physics"
	"github.com/milk9111/trapline/prefabs"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	baseWidth  = common.BaseWidth
	baseHeight = common.BaseHeight
)

type Game struct {
	frames int
	debug  bool

	paused  bool
	pauseUI *ebitenui.UI
	face    ebtext.Face

	levelName string
	spec      *prefabs.LevelSpec
	scene     *prefabs.Scene
	runner    *choreo.Runner
	space     *physics.Space
	watcher   *prefabs.Watcher

	deaths    int
	lastDeath string
	status    string

	clipboardOK bool
}

func NewGame(levelName string, debug, watch bool) (*Game, error) {
	g := &Game{
		debug:     debug,
		levelName: levelName,
		face:      ebtext.NewGoXFace(basicfont.Face7x13),
	}
	if err := g.loadLevel(); err != nil {
		return nil, err
	}
	g.pauseUI = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		log.Printf("game: clipboard unavailable: %v", err)
	} else {
		g.clipboardOK = true
	}

	if watch {
		w, err := prefabs.WatchLevels()
		if err != nil {
			log.Printf("game: hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// Close stops the file watcher.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) loadLevel() error {
	spec, err := prefabs.LoadLevel(g.levelName)
	if err != nil {
		return err
	}

	space := physics.NewSpace(physics.DefaultGravity)
	for _, s := range spec.Solids {
		space.AddSolid(s.X, s.Y, s.Width, s.Height)
	}
	space.SpawnPlayer(spec.Player.X, spec.Player.Y, spec.Player.Width, spec.Player.Height)

	runner := choreo.NewRunner(
		choreo.WithCollisionSource(space),
		choreo.WithRenderSink(space),
		choreo.WithMoverSource(space),
	)
	scene, err := prefabs.Build(runner, spec, g.onDeath)
	if err != nil {
		runner.Teardown()
		return err
	}

	if g.runner != nil {
		g.runner.Teardown()
	}
	g.spec = spec
	g.scene = scene
	g.runner = runner
	g.space = space
	g.status = fmt.Sprintf("loaded %s: %d hazards, %d links", spec.Name, len(spec.Hazards), len(spec.Links))
	log.Printf("game: %s", g.status)
	return nil
}

func (g *Game) restart() {
	if err := g.loadLevel(); err != nil {
		g.status = fmt.Sprintf("restart failed: %v", err)
		log.Printf("game: %s", g.status)
	}
}

func (g *Game) nextLevel() {
	names := prefabs.LevelNames()
	if len(names) == 0 {
		return
	}
	current := strings.TrimSuffix(filepath.Base(g.levelName), ".yaml") + ".yaml"
	next := names[0]
	for i, n := range names {
		if n == current {
			next = names[(i+1)%len(names)]
			break
		}
	}
	prev := g.levelName
	g.levelName = next
	if err := g.loadLevel(); err != nil {
		g.levelName = prev
		g.status = fmt.Sprintf("load %s failed: %v", next, err)
		log.Printf("game: %s", g.status)
	}
}

func (g *Game) onDeath(ev choreo.DeathEvent) {
	g.deaths++
	g.lastDeath = ev.Name
	if g.lastDeath == "" {
		g.lastDeath = ev.Actor.String()
	}
	if g.debug {
		log.Printf("game: death by %s, revealed %d", g.lastDeath, len(ev.Revealed))
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed, errs, open := g.watcher.Poll()
	for _, err := range errs {
		log.Printf("game: watch error: %v", err)
	}
	if !open {
		log.Printf("game: level watcher stopped")
		_ = g.watcher.Close()
		g.watcher = nil
	}
	if len(changed) > 0 {
		log.Printf("game: %s changed, reloading", changed[len(changed)-1])
		g.restart()
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.nextLevel()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.revealAll()
	}

	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	jump := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	vx := 0.0
	if left {
		vx -= g.spec.Player.MoveSpeed
	}
	if right {
		vx += g.spec.Player.MoveSpeed
	}
	g.space.MovePlayer(vx, jump, g.spec.Player.JumpSpeed)

	dt := 1.0 / float64(ebiten.TPS())
	g.runner.Tick(dt)
	g.space.Step(dt)

	for _, ev := range g.runner.Events() {
		if g.debug && ev.Kind != ecs.EventPhaseChanged {
			log.Printf("game: tick %d %s %s", ev.Tick, ev.Kind, ev.Entity)
		}
	}
	return nil
}

func (g *Game) copyState() {
	if !g.clipboardOK {
		g.status = "clipboard unavailable"
		return
	}
	raw, err := prefabs.MarshalDump(prefabs.DumpRunner(g.runner))
	if err != nil {
		g.status = fmt.Sprintf("dump failed: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, raw)
	g.status = fmt.Sprintf("copied %d actors", len(g.runner.Actors()))
}

func (g *Game) revealAll() {
	for _, e := range g.runner.Actors() {
		if err := g.runner.ForceReveal(e, false); err != nil {
			log.Printf("game: reveal %s: %v", e, err)
		}
	}
	g.status = "revealed every hazard"
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	for _, s := range g.spec.Solids {
		vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.Width), float32(s.Height), colornames.Dimgray, false)
	}

	for _, e := range g.runner.Actors() {
		st, ok := g.runner.VisualState(e)
		if !ok {
			continue
		}
		g.drawHazard(screen, e, st)
	}

	if x, y, w, h, ok := g.space.PlayerBox(); ok {
		vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), colornames.Lightskyblue, false)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()))
	g.drawText(screen, fmt.Sprintf("%s  deaths: %d  last: %s", g.spec.Name, g.deaths, g.lastDeath), 8, 24)
	g.drawText(screen, g.status, 8, 40)
	g.drawText(screen, "arrows/AD move  space jump  R restart  N next  V reveal  C copy  esc pause", 8, baseHeight-20)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawHazard(screen *ebiten.Image, e ecs.Entity, st choreo.VisualState) {
	base, ok := g.scene.Colors[e]
	if !ok {
		switch st.Kind {
		case component.KindVibrating:
			base = colornames.Orange
		case component.KindDropPlatform:
			base = colornames.Sienna
		default:
			base = colornames.Firebrick
		}
	}
	x := float32(st.HitBox.L)
	y := float32(st.HitBox.B)
	w := float32(st.HitBox.R - st.HitBox.L)
	h := float32(st.HitBox.T - st.HitBox.B)

	opacity := st.Opacity
	if st.Kind == component.KindDropPlatform {
		// the platform itself stays visible; opacity is the hazard on it
		vector.FillRect(screen, x, y, w, h, base, false)
		if opacity > 0 {
			vector.FillRect(screen, x, y-6, w, 6, withAlpha(colornames.Red, opacity), false)
		}
	} else if opacity > 0 {
		vector.FillRect(screen, x, y, w, h, withAlpha(base, opacity), false)
	}

	if !g.debug {
		return
	}
	outline := color.Color(colornames.Gray)
	if st.Lethal {
		outline = colornames.Red
	}
	vector.StrokeRect(screen, x, y, w, h, 1, outline, false)
	if a, ok := g.runner.Actor(e); ok {
		g.drawText(screen, a.Phase.String(), float64(x), float64(y)-16)
	}
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y float64) {
	if s == "" {
		return
	}
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(colornames.White)
	ebtext.Draw(screen, s, g.face, op)
}

func withAlpha(c color.Color, opacity float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * common.Clamp01(opacity))
	return n
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
