// Package canvas draws marker overlays onto a screenshot instead of into the page.
package canvas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"page-marker/internal/marker"

	"github.com/fogleman/gg"
)

const (
	borderWidth  = 2
	labelHeight  = 19
	labelPadding = 4
)

type nodeID int

// Canvas is a marker.OverlayHost over a decoded screenshot. Overlay coordinates are in
// CSS pixels and scaled to the screenshot resolution.
type Canvas struct {
	base   image.Image
	scaleX float64
	scaleY float64

	seq   int
	order []nodeID
	live  map[nodeID]marker.OverlayBox
}

var _ marker.OverlayHost = (*Canvas)(nil)

// New decodes a PNG or JPEG screenshot of a viewport of the given CSS size.
func New(screenshot []byte, viewportWidth, viewportHeight float64) (*Canvas, error) {
	img, _, err := image.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	c := &Canvas{
		base:   img,
		scaleX: 1,
		scaleY: 1,
		live:   make(map[nodeID]marker.OverlayBox),
	}

	b := img.Bounds()
	if viewportWidth > 0 && viewportHeight > 0 {
		c.scaleX = float64(b.Dx()) / viewportWidth
		c.scaleY = float64(b.Dy()) / viewportHeight
	}

	return c, nil
}

// InstallStylesheet is a no-op: page styles do not exist on a screenshot.
func (c *Canvas) InstallStylesheet(context.Context, string) error {
	return nil
}

func (c *Canvas) AppendOverlay(_ context.Context, box marker.OverlayBox) (marker.OverlayNode, error) {
	c.seq++
	id := nodeID(c.seq)
	c.order = append(c.order, id)
	c.live[id] = box

	return id, nil
}

func (c *Canvas) RemoveOverlay(_ context.Context, node marker.OverlayNode) error {
	id, ok := node.(nodeID)
	if !ok {
		return fmt.Errorf("unexpected overlay node %T", node)
	}

	delete(c.live, id)

	return nil
}

// Overlays returns the number of overlays currently drawn.
func (c *Canvas) Overlays() int {
	return len(c.live)
}

// Render draws the live overlays, in creation order, over the screenshot.
func (c *Canvas) Render() image.Image {
	return c.draw().Image()
}

// EncodePNG renders and encodes the annotated screenshot.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer

	if err := c.draw().EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *Canvas) draw() *gg.Context {
	dc := gg.NewContextForImage(c.base)

	kept := c.order[:0]
	for _, id := range c.order {
		box, ok := c.live[id]
		if !ok {
			continue
		}
		kept = append(kept, id)

		c.drawBox(dc, box)
	}
	c.order = kept

	return dc
}

func (c *Canvas) drawBox(dc *gg.Context, box marker.OverlayBox) {
	x := box.Left * c.scaleX
	y := box.Top * c.scaleY
	w := box.Width * c.scaleX
	h := box.Height * c.scaleY

	// Border and label are sized in viewport pixels like the rest of the box.
	border := borderWidth * (c.scaleX + c.scaleY) / 2
	lh := labelHeight * c.scaleY
	pad := labelPadding * c.scaleX

	dc.SetHexColor(box.Color)
	dc.SetLineWidth(border)
	dc.SetDash(4*c.scaleX, 2*c.scaleX)
	dc.DrawRectangle(x+border/2, y+border/2, w-border, h-border)
	dc.Stroke()
	dc.SetDash()

	textWidth, textHeight := dc.MeasureString(box.Label)
	labelTop := y - lh
	if labelTop < 0 {
		labelTop = 0
	}

	dc.SetHexColor(box.Color)
	dc.DrawRectangle(x, labelTop, textWidth+2*pad, lh)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(box.Label, x+pad, labelTop+(lh+textHeight)/2)
}
