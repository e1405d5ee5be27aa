// Package raster is a reference host adapter that renders the committed
// tree into an in-memory RGBA image.
//
// It exists so the runtime can be exercised end to end, by the preview
// tool and by tests, without a real engine. It is not an engine
// integration: there is no retained GPU state, every frame repaints the
// whole node tree back to front.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/host"
)

// measureCacheSize bounds the text-measurement cache.
const measureCacheSize = 512

// Node is a raster host node: a kind tag, current props, and children.
type Node struct {
	kind     host.Kind
	props    element.Props
	children []*Node
}

// Kind implements host.Node.
func (n *Node) Kind() host.Kind { return n.kind }

// Backend implements host.Adapter over a simple retained node tree.
type Backend struct {
	container *Node
	face      font.Face
	measures  *lru.Cache[string, [2]float64]
}

// New creates a raster backend with the built-in bitmap font.
func New() (*Backend, error) {
	cache, err := lru.New[string, [2]float64](measureCacheSize)
	if err != nil {
		return nil, err
	}
	return &Backend{
		container: &Node{kind: host.KindGroup, props: element.Props{}},
		face:      basicfont.Face7x13,
		measures:  cache,
	}, nil
}

// Container returns the node to mount roots under.
func (b *Backend) Container() host.Node { return b.container }

// Create implements host.Adapter.
func (b *Backend) Create(tag string, props element.Props) (host.Node, error) {
	kind, ok := host.KindForTag(tag)
	if !ok {
		return nil, fmt.Errorf("raster: unknown primitive tag %q", tag)
	}
	copied := make(element.Props, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return &Node{kind: kind, props: copied}, nil
}

// Append implements host.Adapter.
func (b *Backend) Append(parent, child host.Node, index int) {
	p := parent.(*Node)
	c := child.(*Node)
	for i, existing := range p.children {
		if existing == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = append(p.children[:index], append([]*Node{c}, p.children[index:]...)...)
}

// Remove implements host.Adapter.
func (b *Backend) Remove(parent, child host.Node) {
	p := parent.(*Node)
	c := child.(*Node)
	for i, existing := range p.children {
		if existing == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.children = nil
}

// Patch implements host.Adapter.
func (b *Backend) Patch(node host.Node, prev, next element.Props) {
	n := node.(*Node)
	if n.props == nil {
		n.props = element.Props{}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			delete(n.props, k)
		}
	}
	for k, v := range next {
		n.props[k] = v
	}
}

// Measure implements host.Adapter. Text nodes measure their content with
// the backend font; measurements are cached since content strings repeat
// heavily across renders.
func (b *Backend) Measure(node host.Node) (float64, float64) {
	n := node.(*Node)
	if n.kind != host.KindText {
		return 0, 0
	}
	content, _ := n.props.String("content")
	if cached, ok := b.measures.Get(content); ok {
		return cached[0], cached[1]
	}
	width := float64(font.MeasureString(b.face, content)) / 64
	metrics := b.face.Metrics()
	height := float64(metrics.Ascent+metrics.Descent) / 64
	b.measures.Add(content, [2]float64{width, height})
	return width, height
}

// Render paints the whole tree into a fresh image of the given size.
func (b *Backend) Render(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	b.paint(img, b.container)
	return img
}

// EncodePNG renders one frame and writes it as PNG.
func (b *Backend) EncodePNG(w io.Writer, width, height int) error {
	return png.Encode(w, b.Render(width, height))
}

func (b *Backend) paint(img *image.RGBA, n *Node) {
	x := propFloat(n.props, host.PropX)
	y := propFloat(n.props, host.PropY)
	w := propFloat(n.props, host.PropWidth)
	h := propFloat(n.props, host.PropHeight)

	switch n.kind {
	case host.KindRect:
		fill := parseColor(n.props, "fill", color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
		rect := image.Rect(int(x), int(y), int(x+w), int(y+h))
		draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Over)
	case host.KindText:
		content, _ := n.props.String("content")
		col := parseColor(n.props, "color", color.RGBA{A: 0xff})
		drawer := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: b.face,
			Dot: fixed.Point26_6{
				X: fixed.I(int(x)),
				Y: fixed.I(int(y)) + b.face.Metrics().Ascent,
			},
		}
		drawer.DrawString(content)
	}
	// Images and emitters have no raster representation; their boxes are
	// still tracked, which is all the preview needs.

	for _, child := range n.children {
		b.paint(img, child)
	}
}

func propFloat(p element.Props, key string) float64 {
	v, _ := p.Float(key)
	return v
}

// parseColor reads a "#rrggbb" or "#rrggbbaa" prop.
func parseColor(p element.Props, key string, fallback color.RGBA) color.RGBA {
	s, ok := p.String(key)
	if !ok || len(s) < 7 || s[0] != '#' {
		return fallback
	}
	hex := func(i int) (uint8, bool) {
		var v uint8
		for _, c := range []byte{s[i], s[i+1]} {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= c - '0'
			case c >= 'a' && c <= 'f':
				v |= c - 'a' + 10
			case c >= 'A' && c <= 'F':
				v |= c - 'A' + 10
			default:
				return 0, false
			}
		}
		return v, true
	}
	r, ok1 := hex(1)
	g, ok2 := hex(3)
	bl, ok3 := hex(5)
	if !ok1 || !ok2 || !ok3 {
		return fallback
	}
	a := uint8(0xff)
	if len(s) >= 9 {
		if av, ok := hex(7); ok {
			a = av
		}
	}
	return color.RGBA{R: r, G: g, B: bl, A: a}
}
