package sifen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vector real del Manual Técnico: CDC 01800695631001001000000612021112917595714694.
// Los primeros 43 dígitos producen el DV 4.
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateDV_VectorManual(t *testing.T) {
	assert.Equal(t, 4, sifen.CalculateDV("0180069563100100100000061202111291759571469"))
}

func TestCalculateDV_RUC(t *testing.T) {
	cases := map[string]int{
		"80069563": 1,
		"80000000": 5,
		"1234567":  9,
		"8006956":  8,
	}
	for in, want := range cases {
		assert.Equal(t, want, sifen.CalculateDV(in), "DV de %s", in)
	}
}

func TestCalculateDV_RestoMenorQueDosDevuelveCero(t *testing.T) {
	assert.Equal(t, 0, sifen.CalculateDV("0"))
	assert.Equal(t, 0, sifen.CalculateDV(""))
}

func TestCalculateDV_IgnoraNoNumericos(t *testing.T) {
	assert.Equal(t, sifen.CalculateDV("80069563"), sifen.CalculateDV("8006-9563"))
}

func TestCalculateDV_Determinista(t *testing.T) {
	in := "0144444401700100100145282201701251587326098"
	first := sifen.CalculateDV(in)
	for i := 0; i < 5; i++ {
		got := sifen.CalculateDV(in)
		assert.Equal(t, first, got)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 9)
	}
}
