// Package openapi встраивает OpenAPI спецификацию HTTP API демона.
package openapi

import (
	_ "embed"
)

//go:embed openapi.json
var spec []byte

// GetSpec возвращает содержимое OpenAPI спецификации
func GetSpec() []byte {
	return spec
}
