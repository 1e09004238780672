// Package sifen: construcción del XML (rDE, rEvento) y del payload QR según el Manual Técnico
// SIFEN v150. Usa beevik/etree para armar el árbol; el XML resultante no está firmado.

package sifen

import (
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Options opciones de generación. El valor cero no es útil: partir de DefaultOptions.
type Options struct {
	DefaultValues      bool   `json:"defaultValues" mapstructure:"default_values"`
	ErrorSeparator     string `json:"errorSeparator" mapstructure:"error_separator"`
	ErrorLimit         int    `json:"errorLimit" mapstructure:"error_limit"`
	Decimals           int    `json:"decimals" mapstructure:"decimals"`                       // montos en moneda extranjera
	TaxDecimals        int    `json:"taxDecimals" mapstructure:"tax_decimals"`                // totales de IVA en moneda extranjera
	PygDecimals        int    `json:"pygDecimals" mapstructure:"pyg_decimals"`                // montos en guaraníes
	PartialTaxDecimals int    `json:"partialTaxDecimals" mapstructure:"partial_tax_decimals"` // IVA por ítem en moneda extranjera
	PygTaxDecimals     int    `json:"pygTaxDecimals" mapstructure:"pyg_tax_decimals"`         // IVA en guaraníes
	Test               bool   `json:"test" mapstructure:"test"`                               // ambiente de pruebas
}

// DefaultOptions valores por defecto.
func DefaultOptions() Options {
	return Options{
		DefaultValues:      true,
		ErrorSeparator:     rules.DefaultErrorSeparator,
		ErrorLimit:         rules.DefaultErrorLimit,
		Decimals:           2,
		TaxDecimals:        2,
		PygDecimals:        0,
		PartialTaxDecimals: 8,
		PygTaxDecimals:     0,
	}
}

// Normalize completa separador y límite de errores vacíos.
func (o Options) Normalize() Options {
	if o.ErrorSeparator == "" {
		o.ErrorSeparator = rules.DefaultErrorSeparator
	}
	if o.ErrorLimit <= 0 {
		o.ErrorLimit = rules.DefaultErrorLimit
	}
	return o
}

// amountDecimals decimales de precios y totales según la moneda.
func (o Options) amountDecimals(currency string) int {
	if currency == sifen.DefaultMoneda {
		return o.PygDecimals
	}
	return o.Decimals
}

// itemTaxDecimals decimales del IVA por ítem según la moneda.
func (o Options) itemTaxDecimals(currency string) int {
	if currency == sifen.DefaultMoneda {
		return o.PygTaxDecimals
	}
	return o.PartialTaxDecimals
}

// totalTaxDecimals decimales de los totales de IVA según la moneda.
func (o Options) totalTaxDecimals(currency string) int {
	if currency == sifen.DefaultMoneda {
		return o.PygTaxDecimals
	}
	return o.TaxDecimals
}

func (o Options) validationError(res rules.Result) error {
	return res.Err(o.ErrorSeparator, o.ErrorLimit)
}
