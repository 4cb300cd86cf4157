// Package render evaluates a compiled program once per pixel and packs the
// results into RGBA frames for display or capture.
package render

import (
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// rgb565ToRGBA converts an RGB565 color to four RGBA bytes using accurate bit-expansion.
func rgb565ToRGBA(val uint16) (r, g, b, a byte) {
	r5 := byte((val >> 11) & 0x1F)
	g6 := byte((val >> 5) & 0x3F)
	b5 := byte(val & 0x1F)
	r = (r5 << 3) | (r5 >> 2)
	g = (g6 << 2) | (g6 >> 4)
	b = (b5 << 3) | (b5 >> 2)
	a = 0xFF
	return
}

// GreyscalePalette returns the default color lookup table: index i maps to
// grey level i packed as RGB565.
func GreyscalePalette() [256]uint16 {
	var p [256]uint16
	for i := 0; i < 256; i++ {
		r5 := uint16(i >> 3)
		g6 := uint16(i >> 2)
		b5 := uint16(i >> 3)
		p[i] = (r5 << 11) | (g6 << 5) | b5
	}
	return p
}

// Renderer runs one program against one VM, a pixel at a time. Scalar results
// go through the palette; vec3/vec4 results are taken as RGB(A) directly. A
// renderer is not safe for concurrent use.
type Renderer struct {
	prog    *vm.Program
	machine *vm.VM
	width   int
	height  int

	// Palette is the 256-entry RGB565 color lookup table applied to scalar
	// results. Defaults to greyscale.
	Palette [256]uint16

	pixels []byte
	faults int
}

func New(prog *vm.Program, width, height int) *Renderer {
	return &Renderer{
		prog:    prog,
		machine: vm.New(),
		width:   width,
		height:  height,
		Palette: GreyscalePalette(),
		pixels:  make([]byte, width*height*4),
	}
}

func (r *Renderer) Width() int  { return r.width }
func (r *Renderer) Height() int { return r.height }

// Faults reports how many pixels faulted during the most recent frame.
func (r *Renderer) Faults() int { return r.faults }

// fixedToByte maps a fixed value to a byte, clamping to [0, 1] first.
func fixedToByte(v fixed.Fixed) byte {
	if v <= 0 {
		return 0
	}
	if v >= fixed.One {
		return 255
	}
	return byte((int64(v) * 255) / int64(fixed.One))
}

// RenderRGBA evaluates the program for every pixel at time t and returns the
// frame as RGBA8888 bytes (width*height*4). The slice is reused between
// frames. Faulting pixels render black and are counted, not fatal.
func (r *Renderer) RenderRGBA(t fixed.Fixed) []byte {
	r.faults = 0

	// Normalize against the far edge so uv spans the full [0, 1] range.
	maxX, maxY := int32(r.width-1), int32(r.height-1)
	if maxX < 1 {
		maxX = 1
	}
	if maxY < 1 {
		maxY = 1
	}

	in := vm.Inputs{Time: t}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			in.Coord = fixed.Vec2{fixed.FromInt(int32(x)), fixed.FromInt(int32(y))}
			in.UV = fixed.Vec2{
				fixed.FromInt(int32(x)).Div(fixed.FromInt(maxX)),
				fixed.FromInt(int32(y)).Div(fixed.FromInt(maxY)),
			}

			base := (y*r.width + x) * 4
			out, err := r.machine.Run(r.prog, in)
			if err != nil {
				r.faults++
				r.pixels[base+0] = 0
				r.pixels[base+1] = 0
				r.pixels[base+2] = 0
				r.pixels[base+3] = 0xFF
				continue
			}
			r.writePixel(base, out)
		}
	}
	return r.pixels
}

func (r *Renderer) writePixel(base int, out vm.Value) {
	switch out.Type {
	case vm.TypeVec3:
		r.pixels[base+0] = fixedToByte(out.C[0])
		r.pixels[base+1] = fixedToByte(out.C[1])
		r.pixels[base+2] = fixedToByte(out.C[2])
		r.pixels[base+3] = 0xFF
	case vm.TypeVec4:
		r.pixels[base+0] = fixedToByte(out.C[0])
		r.pixels[base+1] = fixedToByte(out.C[1])
		r.pixels[base+2] = fixedToByte(out.C[2])
		r.pixels[base+3] = fixedToByte(out.C[3])
	case vm.TypeVec2:
		r.pixels[base+0] = fixedToByte(out.C[0])
		r.pixels[base+1] = fixedToByte(out.C[1])
		r.pixels[base+2] = 0
		r.pixels[base+3] = 0xFF
	case vm.TypeFixed, vm.TypeInt, vm.TypeBool:
		var idx byte
		if out.Type == vm.TypeInt {
			n := out.Int()
			if n < 0 {
				n = 0
			} else if n > 255 {
				n = 255
			}
			idx = byte(n)
		} else {
			idx = fixedToByte(out.Fixed())
		}
		cr, cg, cb, ca := rgb565ToRGBA(r.Palette[idx])
		r.pixels[base+0] = cr
		r.pixels[base+1] = cg
		r.pixels[base+2] = cb
		r.pixels[base+3] = ca
	default:
		// Void and mat3 results carry no displayable color.
		r.pixels[base+0] = 0
		r.pixels[base+1] = 0
		r.pixels[base+2] = 0
		r.pixels[base+3] = 0xFF
	}
}

// RenderImage returns the frame at time t as an *image.RGBA backed by the
// renderer's pixel buffer.
func (r *Renderer) RenderImage(t fixed.Fixed) *image.RGBA {
	pix := r.RenderRGBA(t)
	return &image.RGBA{
		Pix:    pix,
		Stride: r.width * 4,
		Rect:   image.Rect(0, 0, r.width, r.height),
	}
}

// SaveSnapshot encodes the frame at time t as a PNG and writes it to
// filename. If scale is greater than 1 the frame is enlarged with
// nearest-neighbor sampling so individual pixels stay crisp.
func (r *Renderer) SaveSnapshot(filename string, t fixed.Fixed, scale int) error {
	var img image.Image = r.RenderImage(t)
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, r.width*scale, r.height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
