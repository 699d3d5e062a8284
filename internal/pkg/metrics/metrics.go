// Package metrics 服務的 Prometheus 指標
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 結果標籤
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// 快取查詢結果標籤
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// HTTPRequests 依路由與狀態碼統計請求數
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration 請求處理時間
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// CatalogCalls 目錄存取次數
	// Labels:
	//   - op: "find published recipes", "find substitutions"
	//   - outcome: "success", "error"
	CatalogCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_catalog_calls_total",
			Help: "Total number of catalog calls",
		},
		[]string{"op", "outcome"},
	)

	// CatalogDuration 目錄存取時間
	CatalogDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_catalog_call_duration_seconds",
			Help:    "Duration of catalog calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"op"},
	)

	// Rankings 排名請求數，kind 為 recommend、expiring、trending
	Rankings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_rankings_total",
			Help: "Total number of ranking requests",
		},
		[]string{"kind", "outcome"},
	)

	// RankingResults 每次排名回傳的筆數
	RankingResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_ranking_results",
			Help:    "Number of results returned per ranking request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)

	// SubstitutionCache 替代關係快取查詢結果
	SubstitutionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_substitution_cache_lookups_total",
			Help: "Substitution cache lookups by result",
		},
		[]string{"result"},
	)

	// BreakerState 目錄斷路器狀態：0 closed、1 half-open、2 open
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipe_catalog_breaker_state",
			Help: "Catalog circuit breaker state",
		},
		[]string{"name"},
	)
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveCatalogCall 記錄一次目錄存取
func ObserveCatalogCall(op string, d time.Duration, err error) {
	CatalogCalls.WithLabelValues(op, outcome(err)).Inc()
	CatalogDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRanking 記錄一次排名請求；失敗時不記錄筆數
func ObserveRanking(kind string, results int, err error) {
	Rankings.WithLabelValues(kind, outcome(err)).Inc()
	if err == nil {
		RankingResults.WithLabelValues(kind).Observe(float64(results))
	}
}

// ObserveHTTP 記錄一次 HTTP 請求
func ObserveHTTP(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
