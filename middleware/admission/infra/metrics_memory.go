package infra

import (
	"sort"
	"strings"
	"sync"

	"admission-gateway/middleware/admission/domain"
)

// MemoryMetrics é um backend de métricas em memória. Útil para testes,
// desenvolvimento e para expor um snapshot em endpoint de debug.
//
// Não faz agregação temporal nem expiração; não é indicado para produção
// com alta cardinalidade de tags.
type MemoryMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	timings  map[string][]float64
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]float64),
	}
}

func (m *MemoryMetrics) Add(name string, value float64, tags map[string]string) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.counters[k] += value
	m.mu.Unlock()
}

func (m *MemoryMetrics) Observe(name string, value float64, tags map[string]string) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.timings[k] = append(m.timings[k], value)
	m.mu.Unlock()
}

func (m *MemoryMetrics) Gauge(name string, value float64, tags map[string]string) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.gauges[k] = value
	m.mu.Unlock()
}

// Counter lê um contador pela mesma combinação nome+tags usada na escrita.
func (m *MemoryMetrics) Counter(name string, tags map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[seriesKey(name, tags)]
}

// GaugeValue lê o valor corrente de um gauge.
func (m *MemoryMetrics) GaugeValue(name string, tags map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[seriesKey(name, tags)]
}

// Timings retorna uma cópia das amostras de um timer.
func (m *MemoryMetrics) Timings(name string, tags map[string]string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.timings[seriesKey(name, tags)]
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Counters retorna uma cópia de todos os contadores, chaveados por
// "nome|tag=valor,...".
func (m *MemoryMetrics) Counters() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// seriesKey serializa nome+tags de forma determinística (tags ordenadas).
func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('|')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(tags[k])
	}
	return sb.String()
}

var _ domain.MetricsRecorder = (*MemoryMetrics)(nil)
