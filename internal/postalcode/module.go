// Package postalcode is the postal code lookup service: search, manual save
// and the stores behind them.
package postalcode

import (
	"cep_lookup/internal/events"
	apphttp "cep_lookup/internal/http"
	"cep_lookup/internal/postalcode/handler"
	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/internal/postalcode/service"
	"cep_lookup/platform/logger"
	"cep_lookup/platform/validator"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(store repository.Store, val *validator.Validator, bus events.Bus, metrics *service.Metrics, log *logger.Logger) *Module {
	svc := service.New(store, val, bus, metrics, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// SetMirror forwards saved entries to m.
func (m *Module) SetMirror(mirror service.Mirror) {
	m.service.SetMirror(mirror)
}

func (m *Module) Name() string {
	return "postalcode"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/postal-codes")
	m.handler.RegisterRoutes(group, ctx.SaveRateLimit)
}

var _ apphttp.Module = (*Module)(nil)
