package ports

import (
	"context"

	"page-marker/internal/entity"
)

// BrowserManager is a browser engine driving one page.
type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	// Evaluate runs a JavaScript function expression with one JSON argument (nil for none).
	Evaluate(ctx context.Context, script string, arg any) (any, error)
	ClickNode(ctx context.Context, ref entity.NodeRef) error
	FillNode(ctx context.Context, ref entity.NodeRef, value string) error
	// PressKey presses a named key (Enter, Tab, Escape, Backspace) on the focused element.
	PressKey(ctx context.Context, key string) error
	Screenshot(ctx context.Context) ([]byte, error)
	IsReady() bool
}
