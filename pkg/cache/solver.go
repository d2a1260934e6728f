package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"beltflow/pkg/domain"
)

// SolverCache специализированный кэш для результатов проверки осуществимости
type SolverCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedSolveResult кэшированный результат
type CachedSolveResult struct {
	Verdict       string              `json:"verdict"`
	MaxFlowPerMin float64             `json:"max_flow_per_min"`
	Flows         []domain.EdgeFlow   `json:"flows,omitempty"`
	Certificate   *domain.Certificate `json:"certificate,omitempty"`
	ComputedAt    time.Time           `json:"computed_at"`
}

// NewSolverCache создаёт кэш для результатов решения
func NewSolverCache(cache Cache, defaultTTL time.Duration) *SolverCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &SolverCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат
func (sc *SolverCache) Get(ctx context.Context, p *domain.Problem, algorithm string) (*CachedSolveResult, bool, error) {
	problemHash := ProblemHash(p)
	key := BuildSolveKey(problemHash, algorithm)

	data, err := sc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedSolveResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = sc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (sc *SolverCache) Set(ctx context.Context, p *domain.Problem, algorithm string, result *CachedSolveResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = sc.defaultTTL
	}

	problemHash := ProblemHash(p)
	key := BuildSolveKey(problemHash, algorithm)

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return sc.cache.Set(ctx, key, data, ttl)
}

// SetFromResult сохраняет доменный результат.
// Результаты-ошибки не кэшируются.
func (sc *SolverCache) SetFromResult(ctx context.Context, p *domain.Problem, algorithm string, res domain.Result, ttl time.Duration) error {
	if res.Verdict != domain.VerdictOK && res.Verdict != domain.VerdictInfeasible {
		return nil
	}

	result := &CachedSolveResult{
		Verdict:       res.Verdict.String(),
		MaxFlowPerMin: res.MaxFlowPerMin,
		Flows:         res.Flows,
		Certificate:   res.Certificate,
	}

	return sc.Set(ctx, p, algorithm, result, ttl)
}

// Invalidate удаляет кэш для задачи
func (sc *SolverCache) Invalidate(ctx context.Context, p *domain.Problem) error {
	problemHash := ProblemHash(p)
	pattern := fmt.Sprintf("solve:*:%s", problemHash)
	_, err := sc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш результатов решения
func (sc *SolverCache) InvalidateAll(ctx context.Context) (int64, error) {
	return sc.cache.DeleteByPattern(ctx, "solve:*")
}

// ToResult восстанавливает доменный результат из кэшированной формы
func (r *CachedSolveResult) ToResult() domain.Result {
	switch r.Verdict {
	case domain.VerdictInfeasible.String():
		return domain.Infeasible(r.Certificate)
	default:
		return domain.Success(r.MaxFlowPerMin, r.Flows)
	}
}
