package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 业务与 HTTP 指标集合
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	calcDuration    prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	submissions     prometheus.Counter
}

// New 创建独立 Registry 并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitment",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recruitment",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		calcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recruitment",
			Name:      "availability_calculation_seconds",
			Help:      "可用性表计算耗时",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitment",
			Name:      "availability_cache_lookups_total",
			Help:      "可用性表缓存查询次数",
		}, []string{"result"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recruitment",
			Name:      "applications_submitted_total",
			Help:      "成功提交的申请数",
		}),
	}

	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.calcDuration, m.cacheLookups, m.submissions,
	)
	return m
}

// Handler /metrics 暴露端点
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware 记录请求数与耗时；route 使用路由模板，避免 ID 造成高基数
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveCalculation 记录一次可用性表计算耗时（nil 接收者安全）
func (m *Metrics) ObserveCalculation(d time.Duration) {
	if m == nil {
		return
	}
	m.calcDuration.Observe(d.Seconds())
}

// CacheHit 记录缓存命中
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss 记录缓存未命中
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ApplicationSubmitted 记录一次成功提交
func (m *Metrics) ApplicationSubmitted() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}
