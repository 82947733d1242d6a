package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"page-marker/internal/config"
	"page-marker/internal/entity"
	"page-marker/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fill struct {
	ref   entity.NodeRef
	value string
}

// fakeBrowser answers the page scripts by content and records every interaction.
type fakeBrowser struct {
	ready    bool
	url      string
	visited  []string
	snapshot map[string]interface{}
	overlays map[int]map[string]any
	nextID   int
	styles   int
	clicks   []entity.NodeRef
	fills    []fill
	keys     []string
	scrolls  []map[string]any
	backs    int
	shot     []byte
	clickErr error
}

func newFakeBrowser(t *testing.T) *fakeBrowser {
	return &fakeBrowser{
		ready:    true,
		url:      "https://docs.test/",
		snapshot: docsPage(),
		overlays: map[int]map[string]any{},
		shot:     blankPNG(t, 200, 100),
	}
}

func (b *fakeBrowser) Launch(context.Context) error { b.ready = true; return nil }
func (b *fakeBrowser) Close(context.Context) error  { b.ready = false; return nil }
func (b *fakeBrowser) IsReady() bool                { return b.ready }

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.visited = append(b.visited, url)
	b.url = url
	b.overlays = map[int]map[string]any{}
	return nil
}

func (b *fakeBrowser) GoBack(context.Context) error {
	b.backs++
	return nil
}

func (b *fakeBrowser) URL(context.Context) (string, error) { return b.url, nil }

func (b *fakeBrowser) Evaluate(_ context.Context, script string, arg any) (any, error) {
	switch {
	case strings.Contains(script, "querySelectorAll"):
		return b.snapshot, nil
	case strings.Contains(script, `createElement("style")`):
		b.styles++
		return true, nil
	case strings.Contains(script, "pm.overlays.set"):
		b.nextID++
		b.overlays[b.nextID] = arg.(map[string]any)
		return b.nextID, nil
	case strings.Contains(script, "outline.remove()"):
		delete(b.overlays, arg.(int))
		return true, nil
	case strings.Contains(script, "scrollBy"):
		b.scrolls = append(b.scrolls, arg.(map[string]any))
		return 400, nil
	}

	return nil, errors.New("unknown script")
}

func (b *fakeBrowser) ClickNode(_ context.Context, ref entity.NodeRef) error {
	if b.clickErr != nil {
		return b.clickErr
	}
	b.clicks = append(b.clicks, ref)
	return nil
}

func (b *fakeBrowser) FillNode(_ context.Context, ref entity.NodeRef, value string) error {
	b.fills = append(b.fills, fill{ref: ref, value: value})
	return nil
}

func (b *fakeBrowser) PressKey(_ context.Context, key string) error {
	b.keys = append(b.keys, key)
	return nil
}

func (b *fakeBrowser) Screenshot(context.Context) ([]byte, error) { return b.shot, nil }

// docsPage is html > body > {a "Docs", input[aria-label=Search], tiny button} in a 200x100 viewport.
func docsPage() map[string]interface{} {
	return map[string]interface{}{
		"generation": 7,
		"viewport":   map[string]interface{}{"width": 200, "height": 100},
		"elements": []interface{}{
			map[string]interface{}{"tag": "html", "parent": -1, "onclick": false, "cursor": "auto"},
			map[string]interface{}{"tag": "body", "parent": 0, "onclick": false, "cursor": "auto"},
			map[string]interface{}{
				"tag": "a", "parent": 1, "onclick": false, "cursor": "pointer", "text": "Docs",
				"rects": []interface{}{
					map[string]interface{}{"left": 10, "top": 10, "width": 100, "height": 30, "hit": 2},
				},
			},
			map[string]interface{}{
				"tag": "input", "parent": 1, "onclick": false, "cursor": "text", "text": "", "ariaLabel": "Search",
				"rects": []interface{}{
					map[string]interface{}{"left": 10, "top": 50, "width": 150, "height": 30, "hit": 3},
				},
			},
			map[string]interface{}{
				"tag": "button", "parent": 1, "onclick": false, "cursor": "pointer", "text": "x",
				"rects": []interface{}{
					map[string]interface{}{"left": 180, "top": 90, "width": 2, "height": 2, "hit": 4},
				},
			},
		},
	}
}

func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func newTestService(t *testing.T, browser *fakeBrowser) *MarkService {
	t.Helper()

	cfg := &config.Config{
		AppConfig: &config.AppConfig{LogLevel: "debug"},
		BrowserConfig: &config.BrowserConfig{
			Engine:         config.EnginePlaywright,
			ViewportWidth:  200,
			ViewportHeight: 100,
			StartURL:       "https://start.test/",
		},
		MarkerConfig: &config.MarkerConfig{
			ColorSeed:     1,
			MinArea:       20,
			ScreenshotDir: t.TempDir(),
			ScrollStep:    400,
			Wait:          10 * time.Millisecond,
		},
	}

	return NewMarkService(MarkServiceParams{
		Config:  cfg,
		Logger:  zaptest.NewLogger(t),
		Browser: browser,
	})
}

func TestMarkService_Mark(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	result, err := svc.Mark(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.MarkTargetPage, result.Target)
	assert.Equal(t, "https://docs.test/", result.URL)
	assert.Equal(t, 2, result.Labels)
	require.Len(t, result.Elements, 2)

	assert.Equal(t, 0, result.Elements[0].Index)
	assert.Equal(t, "a", result.Elements[0].Type)
	assert.Equal(t, "Docs", result.Elements[0].Text)
	assert.Equal(t, entity.NodeRef{Generation: 7, Index: 2}, result.Elements[0].Node)

	assert.Equal(t, 1, result.Elements[1].Index)
	assert.Equal(t, "input", result.Elements[1].Type)
	assert.Equal(t, "Search", result.Elements[1].AriaLabel)
	assert.Equal(t, entity.BoundingBox{X: 10, Y: 50, Width: 150, Height: 30}, result.Elements[1].Box)

	assert.Len(t, browser.overlays, 2)
	assert.Len(t, svc.Elements(), 2)
}

func TestMarkService_RemarkReplacesOverlays(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)
	_, err = svc.Mark(context.Background())
	require.NoError(t, err)

	assert.Len(t, browser.overlays, 2)
}

func TestMarkService_StylesheetReinstalledAfterNavigation(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)
	_, err = svc.Mark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, browser.styles)

	_, err = svc.Open(context.Background(), "go.dev")
	require.NoError(t, err)

	_, err = svc.Mark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, browser.styles)
	assert.Len(t, browser.overlays, 2)
}

func TestMarkService_Unmark(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Unmark(context.Background()))
	assert.Empty(t, browser.overlays)
	assert.Nil(t, svc.Elements())

	require.NoError(t, svc.Unmark(context.Background()))
}

func TestMarkService_BrowserNotReady(t *testing.T) {
	browser := newFakeBrowser(t)
	browser.ready = false
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeBrowserNotReady, apperr.CodeOf(err))
}

func TestMarkService_ClickResolvesByLabel(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)

	res, err := svc.Click(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []entity.NodeRef{{Generation: 7, Index: 3}}, browser.clicks)

	// A click may change the page, so the mark is dropped.
	assert.Empty(t, browser.overlays)
	assert.Nil(t, svc.Elements())
}

func TestMarkService_ClickErrors(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Click(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotMarked, apperr.CodeOf(err))

	_, err = svc.Mark(context.Background())
	require.NoError(t, err)

	_, err = svc.Click(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "only 2 available")

	browser.clickErr = errors.New("detached")
	_, err = svc.Click(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(err))
}

func TestMarkService_Type(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)

	_, err = svc.Type(context.Background(), 1, "goroutines")
	require.NoError(t, err)

	assert.Equal(t, []fill{{ref: entity.NodeRef{Generation: 7, Index: 3}, value: "goroutines"}}, browser.fills)
	assert.Equal(t, []string{"Enter"}, browser.keys)
}

func TestMarkService_Scroll(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Scroll(context.Background(), entity.ScrollDown, NoElement)
	require.NoError(t, err)

	_, err = svc.Mark(context.Background())
	require.NoError(t, err)

	_, err = svc.Scroll(context.Background(), entity.ScrollUp, 0)
	require.NoError(t, err)

	require.Len(t, browser.scrolls, 2)
	assert.Equal(t, map[string]any{"generation": 0, "index": -1, "dy": 400}, browser.scrolls[0])
	assert.Equal(t, map[string]any{"generation": 7, "index": 2, "dy": -400}, browser.scrolls[1])

	_, err = svc.Scroll(context.Background(), "sideways", NoElement)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestMarkService_Navigation(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	require.NoError(t, svc.Start(context.Background()))

	_, err := svc.Open(context.Background(), "go.dev")
	require.NoError(t, err)

	_, err = svc.Restart(context.Background())
	require.NoError(t, err)

	_, err = svc.GoBack(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://start.test/", "https://go.dev", "https://start.test/"}, browser.visited)
	assert.Equal(t, 1, browser.backs)

	_, err = svc.Open(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestMarkService_Wait(t *testing.T) {
	svc := newTestService(t, newFakeBrowser(t))

	res, err := svc.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.ActionTypeWait, res.Action)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Wait(ctx)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeCancelledByUser, apperr.CodeOf(err))
}

func TestMarkService_Annotate(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	_, err := svc.Mark(context.Background())
	require.NoError(t, err)
	require.Len(t, browser.overlays, 2)

	result, err := svc.Annotate(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, browser.overlays)
	assert.Equal(t, entity.MarkTargetScreenshot, result.Target)
	assert.Equal(t, 2, result.Labels)
	assert.Len(t, svc.Elements(), 2)

	saved, err := os.ReadFile(result.ScreenshotPath)
	require.NoError(t, err)
	assert.Equal(t, result.Screenshot, saved)

	img, err := png.Decode(bytes.NewReader(saved))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	// Annotated descriptors drive actions like page ones.
	_, err = svc.Click(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []entity.NodeRef{{Generation: 7, Index: 2}}, browser.clicks)
}

func TestMarkService_Screenshot(t *testing.T) {
	browser := newFakeBrowser(t)
	svc := newTestService(t, browser)

	path := filepath.Join(t.TempDir(), "nested", "page.png")
	saved, err := svc.Screenshot(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, saved)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, browser.shot, data)
}
