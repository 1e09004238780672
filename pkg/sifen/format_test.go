package sifen_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

func TestFormatAmount_Numeros(t *testing.T) {
	got, err := sifen.FormatAmount(1234.5, 2)
	require.NoError(t, err)
	assert.Equal(t, "1234.50", got)

	got, err = sifen.FormatAmount(1000000, 0)
	require.NoError(t, err)
	assert.Equal(t, "1000000", got)

	got, err = sifen.FormatAmount(decimal.RequireFromString("10.005"), 2)
	require.NoError(t, err)
	assert.Equal(t, "10.01", got)
}

func TestFormatAmount_ComaDecimal(t *testing.T) {
	got, err := sifen.FormatAmount("1.234,56", 2)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got)

	got, err = sifen.FormatAmount("1,234.56", 2)
	require.NoError(t, err, "punto decimal con coma de miles")
	assert.Equal(t, "1234.56", got)

	got, err = sifen.FormatAmount("1,234,567.5", 1)
	require.NoError(t, err)
	assert.Equal(t, "1234567.5", got)

	got, err = sifen.FormatAmount("1.234.567,5", 1)
	require.NoError(t, err)
	assert.Equal(t, "1234567.5", got)

	_, err = sifen.FormatAmount("1,2,3", 2)
	assert.ErrorIs(t, err, sifen.ErrFormat, "varias comas sin punto")

	got, err = sifen.FormatAmount("15,5", 2)
	require.NoError(t, err)
	assert.Equal(t, "15.50", got)

	got, err = sifen.FormatAmount(sifen.Amount(" 99.4 "), 0)
	require.NoError(t, err)
	assert.Equal(t, "99", got)
}

func TestFormatAmount_Invalido(t *testing.T) {
	_, err := sifen.FormatAmount("abc", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sifen.ErrFormat))

	_, err = sifen.FormatAmount(struct{}{}, 2)
	assert.ErrorIs(t, err, sifen.ErrFormat)
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-05T10:20:30":       "2024-03-05",
		"2024-03-05 10:20:30":       "2024-03-05",
		"2024-03-05":                "2024-03-05",
		"2024-03-05T10:20:30-03:00": "2024-03-05",
		"05/03/2024":                "2024-03-05",
	}
	for in, want := range cases {
		got, err := sifen.FormatDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestFormatDateTime(t *testing.T) {
	got, err := sifen.FormatDateTime("2024-03-05 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T10:20:30", got)

	got, err = sifen.FormatDateTime("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T00:00:00", got)
}

func TestFormatDate_FechaInvalidaDevuelveFormatError(t *testing.T) {
	_, err := sifen.FormatDate("ayer")
	require.Error(t, err)

	var fe *sifen.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "ayer", fe.Value)

	named := sifen.WithField(err, "fecha")
	require.ErrorAs(t, named, &fe)
	assert.Equal(t, "fecha", fe.Field)
	assert.Contains(t, named.Error(), "fecha")
	assert.ErrorIs(t, named, sifen.ErrFormat)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "001", sifen.FormatCode("1", 3))
	assert.Equal(t, "0000123", sifen.FormatCode("123", 7))
	assert.Equal(t, "1234", sifen.FormatCode("1234", 3), "no trunca")
	assert.Equal(t, "01", sifen.FormatCode(" 1 ", 2))
}

func TestFormatBoolean(t *testing.T) {
	assert.Equal(t, "S", sifen.FormatBoolean(true))
	assert.Equal(t, "N", sifen.FormatBoolean(false))
}

func TestFormatText_EscapaDespuesDeTruncar(t *testing.T) {
	assert.Equal(t, "a &amp; b", sifen.FormatText("a & b", 0))
	assert.Equal(t, "&lt;x&gt; &quot;y&quot; &apos;z&apos;", sifen.FormatText(`<x> "y" 'z'`, 0))

	// "A&" truncado a 2 caracteres: la entidad queda completa.
	assert.Equal(t, "A&amp;", sifen.FormatText("A&B", 2))
}

func TestFormatText_EliminaControlesYCuentaCaracteres(t *testing.T) {
	assert.Equal(t, "ab\tc\nd", sifen.FormatText("a\x00b\tc\nd\x1f\x7f", 0))
	assert.Equal(t, "Ñandú", sifen.FormatText("Ñandú Poty", 5), "trunca por caracteres, no bytes")
}

func TestCleanText_NormalizaNFC(t *testing.T) {
	decomposed := "Asuncio\u0301n"
	assert.Equal(t, "Asunción", sifen.CleanText(decomposed, 0))
	assert.Equal(t, "a & b", sifen.CleanText("a & b", 0))
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var v struct {
		A sifen.Amount `json:"a"`
		B sifen.Amount `json:"b"`
		C sifen.Amount `json:"c"`
		D sifen.Code   `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1500.5, "b": "1.234,56", "c": null, "d": 1}`), &v))

	a, err := v.A.Decimal()
	require.NoError(t, err)
	assert.True(t, a.Equal(decimal.RequireFromString("1500.5")))

	b, err := v.B.Decimal()
	require.NoError(t, err)
	assert.True(t, b.Equal(decimal.RequireFromString("1234.56")))

	assert.True(t, v.C.IsZero())
	assert.Equal(t, "1", v.D.String())
}
