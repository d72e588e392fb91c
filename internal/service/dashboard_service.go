package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/catalog"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
)

const (
	dashboardCacheKey     = "dashboard:summary"
	dashboardCachePattern = "dashboard:*"
	dashboardTopCareers   = 10
)

type dashboardRepository interface {
	CountByProgramStatus(ctx context.Context) ([]models.LabelCount, error)
	TopCareers(ctx context.Context, limit int) ([]models.LabelCount, error)
	SessionsByMonth(ctx context.Context) ([]models.LabelCount, error)
	IntakeReasons(ctx context.Context) ([]models.IntakeReasonRow, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	TopLimit int
	Metrics  *MetricsService
}

// DashboardService composes the program statistics and caches them in Redis.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = dashboardTopCareers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the aggregated statistics and whether they were served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	return remember(ctx, s.cache, dashboardCacheKey, s.cfg.CacheTTL, s.logger, s.compose)
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	start := time.Now()
	defer func() { s.cfg.Metrics.ObserveDBQuery("dashboard_summary", time.Since(start)) }()

	byStatus, err := s.repo.CountByProgramStatus(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count students by status")
	}
	careers, err := s.repo.TopCareers(ctx, s.cfg.TopLimit)
	if err != nil {
		return nil, internalError(err, "failed to count careers")
	}
	months, err := s.repo.SessionsByMonth(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count sessions by month")
	}
	reasons, err := s.repo.IntakeReasons(ctx)
	if err != nil {
		return nil, internalError(err, "failed to count intake reasons")
	}
	return &models.DashboardSummary{
		ByProgramStatus: nonNilCounts(byStatus),
		TopCareers:      nonNilCounts(careers),
		SessionsByMonth: nonNilCounts(months),
		IntakeByYear:    PivotIntakeReasons(reasons),
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// PivotIntakeReasons folds (year, reason) tallies into one row per year, oldest first.
// Reasons outside Ideación and Tentativa are ignored.
func PivotIntakeReasons(rows []models.IntakeReasonRow) []models.IntakeByYear {
	byYear := make(map[int]*models.IntakeByYear)
	for _, row := range rows {
		entry, ok := byYear[row.Year]
		if !ok {
			entry = &models.IntakeByYear{Year: row.Year}
			byYear[row.Year] = entry
		}
		switch catalog.Fold(row.Motivo) {
		case catalog.Fold(catalog.MotivoIdeacion):
			entry.Ideacion += row.Total
		case catalog.Fold(catalog.MotivoTentativa):
			entry.Tentativa += row.Total
		}
	}
	out := make([]models.IntakeByYear, 0, len(byYear))
	for _, entry := range byYear {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func nonNilCounts(in []models.LabelCount) []models.LabelCount {
	if in == nil {
		return []models.LabelCount{}
	}
	return in
}
