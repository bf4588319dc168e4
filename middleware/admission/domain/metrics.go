package domain

// MetricsRecorder recebe contadores, timers e gauges descrevendo o
// comportamento do limiter. O core só conhece este contrato; o backend
// concreto (memória, statsd, etc.) fica na infra.
type MetricsRecorder interface {
	// Add incrementa um contador.
	Add(name string, value float64, tags map[string]string)
	// Observe registra uma amostra de timer/histograma (segundos).
	Observe(name string, value float64, tags map[string]string)
	// Gauge registra o valor corrente de uma medida.
	Gauge(name string, value float64, tags map[string]string)
}

// Nomes das métricas emitidas pelo limiter.
const (
	MetricCheck               = "admission.check"                // contador, tags strategy+result
	MetricDenied              = "admission.denied"               // contador, tag strategy
	MetricConsumeSeconds      = "admission.consume.seconds"      // timer, tag strategy
	MetricCacheSize           = "admission.cache.size"           // gauge
	MetricConcurrencyRejected = "admission.concurrency.rejected" // contador
)
