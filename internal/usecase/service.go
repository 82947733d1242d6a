package usecase

import (
	"page-marker/internal/config"
	"page-marker/internal/ports"
	"page-marker/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Marks   adapters.MarkService
	Browser adapters.BrowserService
}

type Params struct {
	fx.In

	Logger  *zap.Logger
	Config  *config.Config
	Browser ports.BrowserManager
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Marks:   factory.CreateMarkService(),
		Browser: factory.CreateBrowserService(),
	}
}
