package usecase

import (
	"context"
	"time"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/infrastructure/analysis"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type AnalysisUsecase interface {
	// Latest serves the cached report, running the analysis on a miss or
	// when refresh is set.
	Latest(ctx context.Context, refresh bool) (*entity.AnalysisReport, error)
}

type analysisUsecase struct {
	log    *logrus.Logger
	runner analysis.Runner
	cache  repository.AnalysisCache
	ttl    time.Duration
	group  singleflight.Group
}

func NewAnalysisUsecase(log *logrus.Logger, runner analysis.Runner, cache repository.AnalysisCache, ttl time.Duration) AnalysisUsecase {
	return &analysisUsecase{
		log:    log,
		runner: runner,
		cache:  cache,
		ttl:    ttl,
	}
}

func (u *analysisUsecase) Latest(ctx context.Context, refresh bool) (*entity.AnalysisReport, error) {
	if !refresh {
		report, err := u.cache.Get(ctx)
		if err != nil {
			u.log.Warnf("Failed to read analysis cache: %+v", err)
		}
		if report != nil {
			return report, nil
		}
	}

	// Concurrent callers share one run of the external process.
	v, err, _ := u.group.Do("analysis", func() (interface{}, error) {
		report, err := u.runner.Run(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(context.WithoutCancel(ctx), report, u.ttl); err != nil {
			u.log.Warnf("Failed to cache analysis report: %+v", err)
		}
		return report, nil
	})
	if err != nil {
		u.log.Warnf("Failed to run analysis: %+v", err)
		return nil, err
	}
	return v.(*entity.AnalysisReport), nil
}
