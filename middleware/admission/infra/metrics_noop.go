package infra

// NopMetrics descarta todas as métricas. Usado quando nenhum backend foi
// configurado.
type NopMetrics struct{}

func (NopMetrics) Add(string, float64, map[string]string)     {}
func (NopMetrics) Observe(string, float64, map[string]string) {}
func (NopMetrics) Gauge(string, float64, map[string]string)   {}
