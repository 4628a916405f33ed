// Command kviz is a live visualizer for the kernel scheduler: it runs a
// small fleet of demo threads exercising priority preemption, donation, and
// sleep/wake, and draws the ready list, thread table, and tick counter in
// an ebiten window — grounded on the teacher's hostGame Update/Draw loop
// (hal/host_window.go) and its tinyfont-on-framebuffer panic screen
// (app/panic.go), redirected at the scheduler's own state instead of a
// device framebuffer.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"tinykernel/kernel"
	"tinykernel/sparkos/fonts/font6x8cp1251"

	"tinygo.org/x/tinyfont"
)

func main() {
	hz := flag.Int("hz", 100, "scheduler tick rate")
	scenario := flag.String("scenario", "donation", "demo scenario: donation, roundrobin, sleepers")
	flag.Parse()

	cfg := kernel.DefaultConfig()
	cfg.TickHz = *hz
	k := kernel.New(cfg)

	switch *scenario {
	case "roundrobin":
		spawnRoundRobinDemo(k)
	case "sleepers":
		spawnSleeperDemo(k)
	default:
		spawnDonationDemo(k)
	}

	g := &vizGame{k: k, hz: *hz}
	ebiten.SetWindowTitle("kviz - thread scheduler visualizer")
	ebiten.SetWindowSize(640, 480)
	ebiten.SetTPS(*hz)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

type vizGame struct {
	k   *kernel.Kernel
	hz  int
	img *image.RGBA
	out *ebiten.Image
}

func (g *vizGame) Update() error {
	g.k.OnTick()
	return nil
}

const (
	vizW, vizH = 640, 480
	rowH       = 10
)

func (g *vizGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, vizW, vizH))
		g.out = ebiten.NewImage(vizW, vizH)
	}
	d := &imageDisplayer{img: g.img}
	draw.Draw(g.img, g.img.Bounds(), image.NewUniform(color.RGBA{A: 0xFF}), image.Point{}, draw.Src)

	fg := color.RGBA{R: 0x30, G: 0xFF, B: 0x60, A: 0xFF}
	font := font6x8cp1251.Font

	tinyfont.WriteLine(d, font, 4, 10, fmt.Sprintf("tick=%d stats=%+v", g.k.TicksNow(), g.k.Stats()), fg)
	tinyfont.WriteLine(d, font, 4, 22, "id  name             state    base eff  locks", fg)

	snaps := g.k.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })

	y := 34
	for _, s := range snaps {
		line := fmt.Sprintf("%-3d %-16s %-8s %-4d %-4d %d",
			s.ID, s.Name, s.State.String(), s.BasePriority, s.EffectivePriority, s.HeldLocks)
		c := fg
		if s.State == kernel.StateRunning {
			c = color.RGBA{R: 0xFF, G: 0xFF, B: 0x30, A: 0xFF}
		}
		tinyfont.WriteLine(d, font, 4, int16(y), line, c)
		y += rowH
	}

	g.out.ReplacePixels(g.img.Pix)
	screen.DrawImage(g.out, nil)
}

func (g *vizGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return vizW, vizH
}

// imageDisplayer implements drivers.Displayer over an *image.RGBA, so
// tinyfont/font6x8cp1251 — written for TinyGo hardware displays — can draw
// straight into the buffer ebiten blits to screen. Grounded on
// app/panic.go's panicDisplay, which does the same thing for a real
// RGB565 device framebuffer.
type imageDisplayer struct {
	img *image.RGBA
}

func (d *imageDisplayer) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d *imageDisplayer) SetPixel(x, y int16, c color.RGBA) {
	b := d.img.Bounds()
	if int(x) < 0 || int(x) >= b.Dx() || int(y) < 0 || int(y) >= b.Dy() {
		return
	}
	d.img.SetRGBA(int(x), int(y), c)
}
