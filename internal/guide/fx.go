package guide

import (
	"github.com/smallbiznis/tourbill/internal/guide/repository"
	"github.com/smallbiznis/tourbill/internal/guide/service"
	"go.uber.org/fx"
)

var Module = fx.Module("guide.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
