// utilitário pequeno para formatação rápida/consistente de valores numéricos
// em headers. Evita puxar fmt (mais pesado e genérico) para formatação simples
// e padroniza a representação.

package admission

import (
	"strconv"
	"time"
)

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }

// formatCeilSeconds arredonda a duração para cima em segundos inteiros.
// Com bucket realmente vazio o resultado nunca é zero: o cliente não deve
// re-tentar imediatamente.
func formatCeilSeconds(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10)
}

func formatUnix(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }
