package sifen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount es un valor numérico tal como llega del llamador: número JSON o texto,
// incluso con coma decimal ("1.234,56"). Se conserva el texto original para que el
// validador pueda distinguir "ausente" de "no numérico".
type Amount string

// AmountOf construye un Amount desde un decimal.
func AmountOf(d decimal.Decimal) Amount { return Amount(d.String()) }

// IsZero indica si el valor no fue informado.
func (a Amount) IsZero() bool { return len(bytes.TrimSpace([]byte(a))) == 0 }

// Decimal interpreta el valor; falla con FormatError si no es numérico.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(string(a))
}

// UnmarshalJSON acepta números, cadenas y null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s, err := unmarshalScalar(b)
	if err != nil {
		return fmt.Errorf("sifen: monto inválido: %w", err)
	}
	*a = Amount(s)
	return nil
}

// Code es un código numérico de longitud fija (establecimiento, punto, número...).
// Acepta tanto 1 como "001" en la entrada.
type Code string

// String devuelve el texto sin normalizar.
func (c Code) String() string { return string(c) }

// UnmarshalJSON acepta números, cadenas y null.
func (c *Code) UnmarshalJSON(b []byte) error {
	s, err := unmarshalScalar(b)
	if err != nil {
		return fmt.Errorf("sifen: código inválido: %w", err)
	}
	*c = Code(s)
	return nil
}

func unmarshalScalar(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
