package main

import (
	"testing"
	"time"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/compiler"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/render"
)

func TestGameWiringIntegration(t *testing.T) {
	// Build the game exactly as main does, without opening a window.
	prog, err := compiler.Compile("return vec3(uv.x, uv.y, 0.5);")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	game := &Game{
		renderer: render.New(prog, 8, 8),
		scale:    4,
		started:  time.Now(),
	}

	w, h := game.Layout(0, 0)
	if w != 32 || h != 32 {
		t.Errorf("Layout: expected 32x32, got %dx%d", w, h)
	}

	pix := game.renderer.RenderRGBA(0)
	if len(pix) != 8*8*4 {
		t.Fatalf("frame size: expected %d bytes, got %d", 8*8*4, len(pix))
	}
	if game.renderer.Faults() != 0 {
		t.Errorf("expected a clean frame, got %d faults", game.renderer.Faults())
	}
}

func TestGamePauseFreezesClock(t *testing.T) {
	game := &Game{started: time.Now().Add(-time.Second)}

	game.frozen = time.Since(game.started)
	game.paused = true
	first := game.elapsed()
	time.Sleep(5 * time.Millisecond)
	if game.elapsed() != first {
		t.Error("elapsed time advanced while paused")
	}

	game.started = time.Now().Add(-game.frozen)
	game.paused = false
	if game.elapsed() < first {
		t.Error("resume lost elapsed time")
	}
}
