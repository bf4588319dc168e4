// Package application contém os casos de uso do controle de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Limiter.ConsumeToken decide allow/deny + remaining/retry-after;
// Service adiciona a emissão de evento de negação por cima do Limiter.
package application
