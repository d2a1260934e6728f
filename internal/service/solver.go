// Package service orchestrates a feasibility check end to end: build the
// transformed graph, run the max-flow oracle, and map the outcome to a
// success, an infeasibility certificate, or an error.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"beltflow/internal/algorithms"
	"beltflow/internal/transform"
	"beltflow/pkg/apperror"
	"beltflow/pkg/cache"
	"beltflow/pkg/config"
	"beltflow/pkg/domain"
	"beltflow/pkg/logger"
	"beltflow/pkg/metrics"
	"beltflow/pkg/telemetry"
)

// FlowService checks whether a belt network can satisfy its lower bounds
// and supplies. One service instance handles any number of concurrent
// solves; every solve owns its graph and tables exclusively.
type FlowService struct {
	algorithm   string
	tolerance   float64
	solverOpts  *algorithms.SolverOptions
	pool        *algorithms.SolverPool
	metrics     *metrics.Metrics
	solverCache *cache.SolverCache
}

// NewFlowService builds a service from solver configuration. The cache is
// optional; pass nil to disable result caching.
func NewFlowService(cfg config.SolverConfig, solverCache *cache.SolverCache) *FlowService {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = algorithms.AlgorithmDinic
	}

	opts := algorithms.DefaultSolverOptions()
	if cfg.Timeout > 0 {
		opts = opts.WithTimeout(cfg.Timeout)
	}
	if cfg.MaxIterations > 0 {
		opts = opts.WithMaxIterations(cfg.MaxIterations)
	}

	return &FlowService{
		algorithm:   algorithm,
		tolerance:   domain.Epsilon,
		solverOpts:  opts,
		pool:        algorithms.NewSolverPool(cfg.MaxConcurrent),
		metrics:     metrics.Get(),
		solverCache: solverCache,
	}
}

// Algorithm returns the configured max-flow algorithm name.
func (s *FlowService) Algorithm() string {
	return s.algorithm
}

// Solve runs a full feasibility check and always returns a terminal
// three-way result; errors are carried inside it, never alongside it.
func (s *FlowService) Solve(ctx context.Context, p *domain.Problem) domain.Result {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.Solve",
		telemetry.WithAttributes(
			attribute.String("algorithm", s.algorithm),
		),
	)
	defer span.End()

	if p == nil {
		return domain.Failure(apperror.ErrNilProblem)
	}

	telemetry.SetAttributes(ctx,
		telemetry.ProblemAttributes(len(p.TouchedNodes()), len(p.Edges), len(p.Sources), p.Sink)...,
	)

	// Проверяем кэш
	if s.solverCache != nil {
		cached, found, err := s.solverCache.Get(ctx, p, s.algorithm)
		if err == nil && found {
			telemetry.AddEvent(ctx, "cache_hit",
				attribute.Float64("max_flow_per_min", cached.MaxFlowPerMin),
			)
			if s.metrics != nil {
				s.metrics.RecordCacheHit(true)
			}
			return cached.ToResult()
		}
		if s.metrics != nil {
			s.metrics.RecordCacheHit(false)
		}
	}

	start := time.Now()
	res := s.solve(ctx, p)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordSolveOperation(s.algorithm, res.Verdict.String(), elapsed, res.MaxFlowPerMin)
	}
	telemetry.SetAttributes(ctx,
		telemetry.SolveAttributes(s.algorithm, res.Verdict.String(), res.MaxFlowPerMin)...,
	)

	if res.Err != nil {
		telemetry.SetError(ctx, res.Err)
		return res
	}

	// Сохраняем в кэш (результаты-ошибки не кэшируются)
	if s.solverCache != nil {
		if err := s.solverCache.SetFromResult(ctx, p, s.algorithm, res, 0); err != nil {
			logger.Log.Warn("failed to cache solve result", "error", err)
		}
	}

	return res
}

func (s *FlowService) solve(ctx context.Context, p *domain.Problem) domain.Result {
	g, info, err := transform.Build(p, s.tolerance)
	if err != nil {
		return domain.Failure(err)
	}

	if s.metrics != nil {
		s.metrics.RecordGraphSize("solve", g.NodeCount(), g.ForwardEdgeCount())
	}

	// Нулевой ожидаемый поток: пустое назначение уже максимально,
	// решатель не нужен
	if info.Trivial() {
		telemetry.AddEvent(ctx, "trivial_instance")
		return domain.Success(info.TotalSupply, transform.Reconstruct(nil, info))
	}

	if err := s.pool.Acquire(ctx); err != nil {
		return domain.Failure(apperror.Wrap(err, apperror.CodeCanceled, "solve queue wait interrupted"))
	}
	defer s.pool.Release()

	oracle, err := algorithms.NewOracle(s.algorithm, s.solverOpts)
	if err != nil {
		return domain.Failure(apperror.Wrap(err, apperror.CodeInvalidAlgorithm, err.Error()))
	}

	maxFlow, err := oracle.SolveMaxFlow(ctx, g, domain.SuperSourceID, domain.SuperSinkID)
	if err != nil {
		return domain.Failure(mapSolverError(err))
	}

	if maxFlow >= info.TotalExpected-s.tolerance {
		return domain.Success(info.TotalSupply, transform.Reconstruct(g, info))
	}

	reachable := oracle.MinCut(g, domain.SuperSourceID)
	cert := transform.Certify(reachable, info, maxFlow, info.TotalExpected)

	if s.metrics != nil {
		s.metrics.RecordCertificate(len(cert.Deficit.TightNodes), len(cert.Deficit.TightEdges))
	}

	return domain.Infeasible(cert)
}

// mapSolverError translates algorithm-layer sentinels into coded
// application errors for the output layer.
func mapSolverError(err error) error {
	switch {
	case errors.Is(err, algorithms.ErrUnboundedFlow):
		return apperror.Wrap(err, apperror.CodeUnboundedFlow,
			"flow problem is unbounded, check for missing capacities")
	case errors.Is(err, algorithms.ErrTimeout):
		return apperror.Wrap(err, apperror.CodeTimeout, "solve timed out")
	case errors.Is(err, algorithms.ErrContextCanceled):
		return apperror.Wrap(err, apperror.CodeCanceled, "solve canceled")
	case errors.Is(err, algorithms.ErrIterationLimit):
		return apperror.Wrap(err, apperror.CodeIterationLimit,
			"solver hit its iteration limit before finishing")
	case errors.Is(err, algorithms.ErrUnknownAlgorithm):
		return apperror.Wrap(err, apperror.CodeInvalidAlgorithm, err.Error())
	default:
		return apperror.Wrap(err, apperror.CodeAlgorithmError, "solver failed")
	}
}
