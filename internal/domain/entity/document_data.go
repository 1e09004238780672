package entity

import "github.com/jhoicas/sifen-api/pkg/sifen"

// DocumentData datos variables de un documento electrónico (DE).
// Los valores llegan tal como los envía el llamador; el formato se aplica al generar el XML.
type DocumentData struct {
	TipoDocumento            int                 `json:"tipoDocumento"`   // 1..8, ver sifen.DocumentTypes
	Establecimiento          sifen.Code          `json:"establecimiento"` // hasta 3 dígitos
	Punto                    sifen.Code          `json:"punto"`           // hasta 3 dígitos
	Numero                   sifen.Code          `json:"numero"`          // hasta 7 dígitos
	Fecha                    string              `json:"fecha"`
	TipoEmision              int                 `json:"tipoEmision,omitempty"` // 0 => 1 (normal)
	TipoTransaccion          int                 `json:"tipoTransaccion,omitempty"`
	TipoImpuesto             int                 `json:"tipoImpuesto,omitempty"`
	CodigoSeguridadAleatorio sifen.Code          `json:"codigoSeguridadAleatorio,omitempty"`
	CDC                      string              `json:"cdc,omitempty"`
	Moneda                   string              `json:"moneda,omitempty"` // vacío => PYG
	Observacion              string              `json:"observacion,omitempty"`
	Cliente                  *Client             `json:"cliente,omitempty"`
	Condicion                *OperationCondition `json:"condicion,omitempty"`
	Items                    []Item              `json:"items,omitempty"`
}

// Currency moneda de la operación (PYG por defecto).
func (d *DocumentData) Currency() string {
	if d == nil || d.Moneda == "" {
		return sifen.DefaultMoneda
	}
	return d.Moneda
}

// EmissionType tipo de emisión, 1 (normal) cuando no se informa.
func (d *DocumentData) EmissionType() int {
	if d == nil || d.TipoEmision == 0 {
		return sifen.EmisionNormal
	}
	return d.TipoEmision
}

// Client receptor del documento.
type Client struct {
	Contribuyente           bool   `json:"contribuyente"`
	RUC                     string `json:"ruc,omitempty"`
	DocumentoTipo           int    `json:"documentoTipo,omitempty"`
	DocumentoNumero         string `json:"documentoNumero,omitempty"`
	RazonSocial             string `json:"razonSocial"`
	NombreFantasia          string `json:"nombreFantasia,omitempty"`
	TipoOperacion           int    `json:"tipoOperacion,omitempty"` // B2B, B2C...
	Pais                    string `json:"pais,omitempty"`          // vacío => PRY
	Direccion               string `json:"direccion,omitempty"`
	NumeroCasa              string `json:"numeroCasa,omitempty"`
	Departamento            int    `json:"departamento,omitempty"`
	DepartamentoDescripcion string `json:"departamentoDescripcion,omitempty"`
	Ciudad                  int    `json:"ciudad,omitempty"`
	CiudadDescripcion       string `json:"ciudadDescripcion,omitempty"`
	Telefono                string `json:"telefono,omitempty"`
	Email                   string `json:"email,omitempty"`
}

// HasAddress indica si se informó el bloque de dirección.
func (c *Client) HasAddress() bool {
	return c != nil && c.Direccion != ""
}

// OperationCondition condición de la operación: contado (1) o crédito (2).
type OperationCondition struct {
	Tipo    int     `json:"tipo"`
	Credito *Credit `json:"credito,omitempty"`
}

// Credit detalle de la operación a crédito.
type Credit struct {
	Tipo   int           `json:"tipo"`            // 1 plazo, 2 cuotas
	Plazo  string        `json:"plazo,omitempty"` // "30 días"
	Cuotas []Installment `json:"cuotas,omitempty"`
}

// Installment cuota de una operación a crédito.
type Installment struct {
	Moneda      string       `json:"moneda,omitempty"`
	Monto       sifen.Amount `json:"monto"`
	Vencimiento string       `json:"vencimiento,omitempty"`
}

// Item línea del documento.
type Item struct {
	Codigo         string       `json:"codigo,omitempty"`
	Descripcion    string       `json:"descripcion"`
	Cantidad       sifen.Amount `json:"cantidad"`
	PrecioUnitario sifen.Amount `json:"precioUnitario"`
	UnidadMedida   int          `json:"unidadMedida,omitempty"`
	Observacion    string       `json:"observacion,omitempty"`
	IVA            *ItemVAT     `json:"iva,omitempty"`
}

// ItemVAT afectación del IVA de una línea. Monto vacío => Base * Porcentaje / 100.
type ItemVAT struct {
	Tipo       int          `json:"tipo"`       // sifen.VATTypes
	Porcentaje sifen.Amount `json:"porcentaje"` // tasa: 0, 5 o 10
	Base       sifen.Amount `json:"base"`       // base gravada
	Monto      sifen.Amount `json:"monto,omitempty"`
}
