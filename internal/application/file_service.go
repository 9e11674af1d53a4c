package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/domain"
	"github.com/mybus-app/service-transit/internal/domain/stop"
)

// FileFetcher returns the raw bytes of a static resource.
type FileFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// ReadFileService reads static JSON resources such as the stop table.
type ReadFileService struct {
	fetcher       FileFetcher
	stopsLocation string
	stopCache     gcache.Cache
	logger        *zap.Logger
}

// NewReadFileService creates a ReadFileService. With stopsTTL > 0 the stop
// table is kept for that long; otherwise it is re-read on every call.
func NewReadFileService(fetcher FileFetcher, stopsLocation string, stopsTTL time.Duration, logger *zap.Logger) *ReadFileService {
	s := &ReadFileService{
		fetcher:       fetcher,
		stopsLocation: stopsLocation,
		logger:        logger,
	}
	if stopsTTL > 0 {
		s.stopCache = gcache.New(1).LRU().Expiration(stopsTTL).Build()
	}
	return s
}

// ReadFile fetches location and decodes its JSON body into out.
func (s *ReadFileService) ReadFile(ctx context.Context, location string, out interface{}) error {
	data, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		s.logger.Error("failed to read file", zap.String("location", location), zap.Error(err))
		return domain.NewUpstreamError(fmt.Sprintf("failed to read %s", location), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewUpstreamError(fmt.Sprintf("failed to parse %s", location), err)
	}
	return nil
}

// LoadStopTable reads the stop-location table.
func (s *ReadFileService) LoadStopTable(ctx context.Context) (stop.Table, error) {
	if s.stopCache != nil {
		if cached, err := s.stopCache.Get(s.stopsLocation); err == nil {
			return cached.(stop.Table), nil
		} else if !errors.Is(err, gcache.KeyNotFoundError) {
			s.logger.Warn("stop table cache lookup failed", zap.Error(err))
		}
	}

	table := stop.Table{}
	if err := s.ReadFile(ctx, s.stopsLocation, &table); err != nil {
		return nil, err
	}

	if s.stopCache != nil {
		if err := s.stopCache.Set(s.stopsLocation, table); err != nil {
			s.logger.Warn("failed to cache stop table", zap.Error(err))
		}
	}
	return table, nil
}
