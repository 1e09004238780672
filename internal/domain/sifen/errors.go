// Package sifen: reglas de negocio del SIFEN (validación de datos, generación del CDC y totales).
// No depende de infraestructura; recibe el reloj y la fuente aleatoria por inyección.

package sifen

import (
	"errors"
	"fmt"
	"strings"
)

// Errores base. Los errores tipados de este paquete los envuelven vía Unwrap.
var (
	ErrValidation = errors.New("sifen: datos inválidos")
	ErrAssembly   = errors.New("sifen: estructura inválida")
)

// Valores por defecto del mensaje de ValidationError.
const (
	DefaultErrorSeparator = "; "
	DefaultErrorLimit     = 10
)

// Result resultado de una validación. Errors conserva el orden de evaluación.
type Result struct {
	Valid  bool     `json:"success"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Err convierte el resultado en *ValidationError; nil si es válido.
func (r Result) Err(separator string, limit int) error {
	if r.Valid {
		return nil
	}
	return NewValidationError(r.Errors, separator, limit)
}

// ValidationError los datos no cumplen una o más reglas de negocio.
type ValidationError struct {
	Errors    []string
	Separator string
	Limit     int // máximo de mensajes en Error(); <= 0 sin límite
}

// NewValidationError crea el error; separador vacío => "; ".
func NewValidationError(errs []string, separator string, limit int) *ValidationError {
	if separator == "" {
		separator = DefaultErrorSeparator
	}
	return &ValidationError{Errors: errs, Separator: separator, Limit: limit}
}

func (e *ValidationError) Error() string {
	msgs := e.Errors
	if e.Limit > 0 && len(msgs) > e.Limit {
		msgs = msgs[:e.Limit]
	}
	sep := e.Separator
	if sep == "" {
		sep = DefaultErrorSeparator
	}
	return strings.Join(msgs, sep)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AssemblyError dato estructuralmente inválido detectado al armar el XML o el CDC.
type AssemblyError struct {
	Field  string
	Reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("sifen: %s: %s", e.Field, e.Reason)
}

func (e *AssemblyError) Unwrap() error { return ErrAssembly }
