package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках
// в компоненты передается nil, и вызовы ничего не делают
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BlockDecisionsTotal  *prometheus.CounterVec
	SlotsGeneratedTotal  *prometheus.CounterVec
	BookingConflicts     *prometheus.CounterVec
	HoursResolutionTotal *prometheus.CounterVec
	CacheRequestsTotal   *prometheus.CounterVec
	JobRunsTotal         *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в указанном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation", "status"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections to the database",
		}, []string{"service"}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		BlockDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "client_block_decisions_total",
			Help: "Client block evaluations by resulting state",
		}, []string{"service", "state"}),

		SlotsGeneratedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slots_generated_total",
			Help: "Generated candidate slots by availability",
		}, []string{"service", "available"}),

		BookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_conflicts_total",
			Help: "Appointment inserts rejected because the slot was taken",
		}, []string{"service", "stage"}),

		HoursResolutionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "effective_hours_resolutions_total",
			Help: "Effective hours resolutions by source",
		}, []string{"service", "source"}),

		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settings_cache_requests_total",
			Help: "Settings cache lookups by result",
		}, []string{"service", "result"}),

		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled job runs by job and status",
		}, []string{"service", "job", "status"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BlockDecisionsTotal,
		m.SlotsGeneratedTotal,
		m.BookingConflicts,
		m.HoursResolutionTotal,
		m.CacheRequestsTotal,
		m.JobRunsTotal,
	)

	return m
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, route).Observe(duration.Seconds())
}

// ObserveDBQuery записывает длительность SQL запроса
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation, status).Observe(duration.Seconds())
}

// ObserveBlockDecision учитывает результат проверки блокировки клиента
func (m *Metrics) ObserveBlockDecision(state string) {
	if m == nil {
		return
	}
	m.BlockDecisionsTotal.WithLabelValues(m.serviceName, state).Inc()
}

// ObserveSlots учитывает количество сгенерированных слотов
func (m *Metrics) ObserveSlots(available, unavailable int) {
	if m == nil {
		return
	}
	m.SlotsGeneratedTotal.WithLabelValues(m.serviceName, "true").Add(float64(available))
	m.SlotsGeneratedTotal.WithLabelValues(m.serviceName, "false").Add(float64(unavailable))
}

// IncBookingConflict учитывает отказ в записи из-за занятого слота
// stage: detector (проверка в транзакции) или constraint (ограничение БД)
func (m *Metrics) IncBookingConflict(stage string) {
	if m == nil {
		return
	}
	m.BookingConflicts.WithLabelValues(m.serviceName, stage).Inc()
}

// ObserveHoursResolution учитывает источник рабочих часов (special, weekly, default, failed)
func (m *Metrics) ObserveHoursResolution(source string) {
	if m == nil {
		return
	}
	m.HoursResolutionTotal.WithLabelValues(m.serviceName, source).Inc()
}

// ObserveCache учитывает результат обращения к кэшу (hit, miss, error)
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(m.serviceName, result).Inc()
}

// ObserveJobRun учитывает запуск фоновой задачи
func (m *Metrics) ObserveJobRun(job string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.JobRunsTotal.WithLabelValues(m.serviceName, job, status).Inc()
}

// SetDBStats обновляет метрики пула соединений
func (m *Metrics) SetDBStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.serviceName).Set(float64(open))
	m.DBInUseConnections.WithLabelValues(m.serviceName).Set(float64(inUse))
	m.DBIdleConnections.WithLabelValues(m.serviceName).Set(float64(idle))
	m.DBWaitCount.WithLabelValues(m.serviceName).Set(float64(waitCount))
}
