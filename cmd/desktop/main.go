// Command desktop compiles a pattern script and animates it in a window.
// Space pauses the clock; S writes a PNG snapshot of the current frame.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/compiler"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/render"
)

type Game struct {
	renderer *render.Renderer
	frameImg *ebiten.Image // reused canvas at the renderer's resolution
	scale    int

	started time.Time
	paused  bool
	frozen  time.Duration // elapsed time captured when pausing
}

func (g *Game) elapsed() time.Duration {
	if g.paused {
		return g.frozen
	}
	return time.Since(g.started)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.paused {
			g.started = time.Now().Add(-g.frozen)
		} else {
			g.frozen = time.Since(g.started)
		}
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		name := fmt.Sprintf("frame-%d.png", time.Now().Unix())
		t := fixed.FromFloat(g.elapsed().Seconds())
		if err := g.renderer.SaveSnapshot(name, t, g.scale); err != nil {
			log.Printf("snapshot failed: %v", err)
		} else {
			log.Printf("wrote %s", name)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frameImg == nil {
		g.frameImg = ebiten.NewImage(g.renderer.Width(), g.renderer.Height())
	}

	t := fixed.FromFloat(g.elapsed().Seconds())
	g.frameImg.WritePixels(g.renderer.RenderRGBA(t))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.frameImg, op)

	if n := g.renderer.Faults(); n > 0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("faults: %d", n), 2, 2)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.renderer.Width() * g.scale, g.renderer.Height() * g.scale
}

func main() {
	width := flag.Int("width", 64, "frame width in pixels")
	height := flag.Int("height", 64, "frame height in pixels")
	scale := flag.Int("scale", 8, "window scale factor")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] script.lp")
		os.Exit(2)
	}

	sourceBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	prog, err := compiler.Compile(string(sourceBytes))
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(*width**scale, *height**scale)
	ebiten.SetWindowTitle("lpmini desktop")

	game := &Game{
		renderer: render.New(prog, *width, *height),
		scale:    *scale,
		started:  time.Now(),
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
