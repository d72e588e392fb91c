package models

import "time"

// LabelCount is a generic chart bucket.
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Total int    `db:"total" json:"total"`
}

// IntakeReasonRow is one (year, reason) tally from the database.
type IntakeReasonRow struct {
	Year   int    `db:"anio"`
	Motivo string `db:"motivo"`
	Total  int    `db:"total"`
}

// IntakeByYear pivots intake reasons per entry year.
type IntakeByYear struct {
	Year      int `json:"anio"`
	Ideacion  int `json:"ideacion"`
	Tentativa int `json:"tentativa"`
}

// DashboardSummary feeds the statistics page.
type DashboardSummary struct {
	ByProgramStatus []LabelCount   `json:"por_estado_programa"`
	TopCareers      []LabelCount   `json:"top_carreras"`
	SessionsByMonth []LabelCount   `json:"seguimientos_por_mes"`
	IntakeByYear    []IntakeByYear `json:"ingresos_por_anio"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// SystemMetrics is a lightweight snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
