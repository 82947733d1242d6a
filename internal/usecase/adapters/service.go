package adapters

import (
	"context"

	"page-marker/internal/entity"
)

type BrowserService interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	IsReady() bool
}

type MarkService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Open(ctx context.Context, url string) (*entity.ActionResult, error)
	Mark(ctx context.Context) (*entity.MarkResult, error)
	Unmark(ctx context.Context) error
	Annotate(ctx context.Context, path string) (*entity.MarkResult, error)
	Elements() []entity.MarkedElement
	Click(ctx context.Context, index int) (*entity.ActionResult, error)
	Type(ctx context.Context, index int, text string) (*entity.ActionResult, error)
	Scroll(ctx context.Context, dir entity.ScrollDirection, index int) (*entity.ActionResult, error)
	Wait(ctx context.Context) (*entity.ActionResult, error)
	GoBack(ctx context.Context) (*entity.ActionResult, error)
	Restart(ctx context.Context) (*entity.ActionResult, error)
	Screenshot(ctx context.Context, path string) (string, error)
}
