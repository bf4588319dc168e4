package domain

import "time"

// Result é o veredito de uma tentativa de consumo. É o único valor que cruza
// a fronteira superior do core: carrega tudo que a camada HTTP precisa para
// montar os headers padrão, e nada do estado interno do bucket.
//
// Quando Allowed, valem Remaining/Capacity/ResetAt. Quando negado, valem
// RetryAfter/Capacity. Negar não é erro: é um resultado normal e esperado.
type Result struct {
	Allowed bool

	// Remaining é o mínimo de tokens restantes entre as regras compostas
	// (a regra que está "segurando" o cliente).
	Remaining int64

	// Capacity é a capacidade da regra vinculante (a que determinou
	// Remaining, ou, na negação, a mais restritiva).
	Capacity int64

	// ResetAt é quando a regra vinculante repõe tokens.
	ResetAt time.Time

	// RetryAfter é quanto esperar até a regra mais restritiva liberar um
	// token. Só é preenchido na negação.
	RetryAfter time.Duration
}
