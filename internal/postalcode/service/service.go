package service

import (
	"context"
	"errors"
	"strings"

	"cep_lookup/internal/events"
	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/internal/postalcode/transport"
	"cep_lookup/platform/apperr"
	"cep_lookup/platform/logger"
	"cep_lookup/platform/normalize"
	"cep_lookup/platform/validator"
)

const (
	MsgFieldsRequired = "city, region code and postal code are required"
	MsgInvalidCode    = "invalid postal code"
	MsgSaved          = "postal code saved"
	MsgSavedInMemory  = "postal code saved in memory"
)

// Mirror copies saved entries to a secondary store out of band.
type Mirror interface {
	EnqueueMirror(ctx context.Context, city, region, code string) error
}

type Service struct {
	store   repository.Store
	val     *validator.Validator
	bus     events.Bus
	metrics *Metrics
	log     *logger.Logger
	mirror  Mirror
}

func New(store repository.Store, val *validator.Validator, bus events.Bus, metrics *Metrics, log *logger.Logger) *Service {
	return &Service{store: store, val: val, bus: bus, metrics: metrics, log: log}
}

// SetMirror enables mirroring of saved entries.
func (s *Service) SetMirror(m Mirror) {
	s.mirror = m
}

func (s *Service) Search(ctx context.Context, req transport.SearchRequest) (*transport.SearchResponse, error) {
	city := strings.TrimSpace(req.City)
	region := normalize.Region(req.RegionCode)
	log := s.log.WithContext(ctx)

	if city == "" || region == "" {
		s.metrics.search(outcomeNotFound)
		return &transport.SearchResponse{Found: false}, nil
	}

	entry, err := s.store.Find(ctx, city, region)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.search(outcomeNotFound)
		log.LookupEvent("search", city, region, outcomeNotFound)
		return &transport.SearchResponse{Found: false}, nil
	}
	if err != nil {
		s.metrics.search(outcomeError)
		appErr := apperr.Internal("search failed").WithOp("postalcode.Search").WithDetails(err.Error())
		appErr.Err = err
		return nil, appErr
	}

	s.metrics.search(outcomeFound)
	log.LookupEvent("search", city, region, outcomeFound)
	return &transport.SearchResponse{Found: true, Code: entry.Code}, nil
}

func (s *Service) Save(ctx context.Context, req transport.SaveRequest) (*transport.SaveResponse, error) {
	city := strings.TrimSpace(req.City)
	region := normalize.Region(req.RegionCode)
	raw := strings.TrimSpace(req.Code)
	log := s.log.WithContext(ctx)

	if city == "" || region == "" || raw == "" {
		s.metrics.save(outcomeRejected)
		return &transport.SaveResponse{Success: false, Message: MsgFieldsRequired}, nil
	}

	code := normalize.PostalCode(raw)
	if err := s.val.Var(code, "postalcode"); err != nil {
		s.metrics.save(outcomeRejected)
		log.LookupEvent("save", city, region, outcomeRejected)
		return &transport.SaveResponse{Success: false, Message: MsgInvalidCode}, nil
	}

	persisted, err := s.store.Add(ctx, repository.Entry{City: city, Region: region, Code: code})
	if err != nil {
		s.metrics.save(outcomeError)
		appErr := apperr.Internal("save failed").WithOp("postalcode.Save").WithDetails(err.Error())
		appErr.Err = err
		return nil, appErr
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.PostalCodeSaved{
			BaseEvent: events.NewBaseEvent(),
			City:      city,
			Region:    region,
			Code:      code,
			Persisted: persisted,
		})
	}
	if s.mirror != nil {
		if err := s.mirror.EnqueueMirror(ctx, city, region, code); err != nil {
			log.Warn("postal code mirror enqueue failed", "error", err)
		}
	}

	msg := MsgSavedInMemory
	outcome := outcomeMemory
	if persisted {
		msg = MsgSaved
		outcome = outcomePersisted
	}
	s.metrics.save(outcome)
	log.LookupEvent("save", city, region, outcome)

	return &transport.SaveResponse{Success: true, Code: code, Message: msg}, nil
}
