package sifen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrFormat es el error base de todo valor que no pudo llevarse a su forma requerida.
var ErrFormat = errors.New("sifen: formato inválido")

// FormatError indica que un valor no pudo convertirse (fecha, monto...).
type FormatError struct {
	Field    string
	Value    string
	Expected string
}

func (e *FormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sifen: %s: %q no es %s", e.Field, e.Value, e.Expected)
	}
	return fmt.Sprintf("sifen: %q no es %s", e.Value, e.Expected)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// WithField asigna el nombre del campo a un FormatError; otros errores pasan intactos.
func WithField(err error, field string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		cp := *fe
		cp.Field = field
		return &cp
	}
	return err
}

// Formatos de fecha aceptados en la entrada, del más al menos específico.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02T15:04:05"
	LayoutCDCDate  = "20060102"
)

// ParseDateTime interpreta una fecha u hora local. Sin zona horaria se conserva la hora de pared.
func ParseDateTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &FormatError{Value: value, Expected: "una fecha válida"}
}

// FormatDate devuelve YYYY-MM-DD.
func FormatDate(value string) (string, error) {
	t, err := ParseDateTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(LayoutDate), nil
}

// FormatDateTime devuelve YYYY-MM-DDTHH:MM:SS.
func FormatDateTime(value string) (string, error) {
	t, err := ParseDateTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(LayoutDateTime), nil
}

// ParseAmount interpreta un monto. Acepta coma decimal; si hay coma y punto, el
// separador que aparece último es el decimal ("1.234,56" y "1,234.56" => 1234.56).
func ParseAmount(value string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if v == "" {
		return decimal.Zero, &FormatError{Value: value, Expected: "un monto"}
	}
	comma, dot := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	switch {
	case comma >= 0 && dot >= 0 && dot > comma:
		v = strings.ReplaceAll(v, ",", "")
	case comma >= 0 && dot >= 0:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	case comma >= 0:
		v = strings.ReplaceAll(v, ",", ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &FormatError{Value: value, Expected: "un monto"}
	}
	return d, nil
}

// FormatAmount formatea un monto con exactamente decimals decimales, punto decimal
// y sin separador de miles.
func FormatAmount(value any, decimals int) (string, error) {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return "", &FormatError{Value: "<nil>", Expected: "un monto"}
		}
		d = *v
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case json.Number:
		return FormatAmount(string(v), decimals)
	case Amount:
		return FormatAmount(string(v), decimals)
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return "", err
		}
		d = parsed
	default:
		return "", &FormatError{Value: fmt.Sprint(value), Expected: "un monto"}
	}
	return FormatDecimal(d, decimals), nil
}

// FormatDecimal redondea y fija la cantidad de decimales.
func FormatDecimal(d decimal.Decimal, decimals int) string {
	return d.Round(int32(decimals)).StringFixed(int32(decimals))
}

// FormatCode rellena con ceros a la izquierda hasta length. No trunca.
func FormatCode(value string, length int) string {
	v := strings.TrimSpace(value)
	if n := utf8.RuneCountInString(v); n < length {
		return strings.Repeat("0", length-n) + v
	}
	return v
}

// FormatBoolean devuelve "S" o "N".
func FormatBoolean(b bool) string {
	if b {
		return "S"
	}
	return "N"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// CleanText elimina caracteres de control no admitidos en XML 1.0 (salvo tab, LF y CR),
// normaliza a NFC y trunca a maxLength caracteres. maxLength <= 0 no trunca.
// No escapa entidades: pensado para valores que la librería XML escapa al escribir.
func CleanText(text string, maxLength int) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r <= 0x1F || r == 0x7F:
			return -1
		}
		return r
	}, text)
	cleaned = norm.NFC.String(cleaned)
	if maxLength > 0 && utf8.RuneCountInString(cleaned) > maxLength {
		cleaned = string([]rune(cleaned)[:maxLength])
	}
	return cleaned
}

// FormatText limpia, trunca y luego escapa el texto. Se trunca antes de escapar
// para no partir una entidad.
func FormatText(text string, maxLength int) string {
	return xmlEscaper.Replace(CleanText(text, maxLength))
}
