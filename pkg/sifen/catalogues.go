// Package sifen contiene catálogos, primitivas de formato y el dígito verificador
// usados por el Sistema Integrado de Facturación Electrónica Nacional (SIFEN, Paraguay),
// según el Manual Técnico v150.
package sifen

// =============================================================================
// Versión del formato y espacios de nombres
// =============================================================================

const (
	SchemaVersion  = 150
	Namespace      = "http://ekuatia.set.gov.py/sifen/xsd"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	DefaultCSCID   = "0001"
	DefaultMoneda  = "PYG"
	MonedaDesc     = "Guarani"
	PaisParaguay   = "PRY"
	PaisParaguayDs = "Paraguay"
)

// TestIssuerName reemplaza la razón social del emisor en documentos del ambiente de pruebas.
const TestIssuerName = "DE generado en ambiente de prueba - sin valor comercial ni fiscal"

// =============================================================================
// Tipos de documento electrónico (iTiDE)
// =============================================================================

const (
	TipoFactura              = 1
	TipoFacturaExportacion   = 2
	TipoFacturaImportacion   = 3
	TipoAutofactura          = 4
	TipoNotaCredito          = 5
	TipoNotaDebito           = 6
	TipoNotaRemision         = 7
	TipoComprobanteRetencion = 8
)

// DocumentTypes descripción de cada tipo de documento (dDesTiDE).
var DocumentTypes = map[int]string{
	TipoFactura:              "Factura electrónica",
	TipoFacturaExportacion:   "Factura electrónica de exportación",
	TipoFacturaImportacion:   "Factura electrónica de importación",
	TipoAutofactura:          "Autofactura electrónica",
	TipoNotaCredito:          "Nota de crédito electrónica",
	TipoNotaDebito:           "Nota de débito electrónica",
	TipoNotaRemision:         "Nota de remisión electrónica",
	TipoComprobanteRetencion: "Comprobante de retención electrónico",
}

// =============================================================================
// Tipos de emisión (iTipEmi)
// =============================================================================

const (
	EmisionNormal       = 1
	EmisionContingencia = 2
)

var EmissionTypes = map[int]string{
	EmisionNormal:       "Normal",
	EmisionContingencia: "Contingencia",
}

// =============================================================================
// Tipo de contribuyente (iTipCont) y régimen (cTipReg)
// =============================================================================

const (
	ContribuyenteFisica   = 1 // Persona física
	ContribuyenteJuridica = 2 // Persona jurídica
)

var Regimes = map[int]string{
	1: "Régimen de Turismo",
	2: "Importador",
	3: "Exportador",
	4: "Maquila",
	5: "Ley N° 60/90",
	6: "Régimen del Pequeño Productor",
	7: "Régimen del Mediano Productor",
	8: "Régimen Contable",
}

// =============================================================================
// Receptor: naturaleza, tipo de operación y documentos de identidad
// =============================================================================

const (
	NaturalezaContribuyente   = 1
	NaturalezaNoContribuyente = 2

	OperacionB2B = 1
	OperacionB2C = 2
)

var IdentityDocumentTypes = map[int]string{
	1: "Cédula paraguaya",
	2: "Pasaporte",
	3: "Cédula extranjera",
	4: "Carnet de residencia",
	5: "Innominado",
	6: "Tarjeta Diplomática de exoneración fiscal",
	9: "Otro",
}

// =============================================================================
// Condición de la operación (iCondOpe) y del crédito (iCondCred)
// =============================================================================

const (
	CondicionContado = 1
	CondicionCredito = 2

	CreditoPlazo = 1
	CreditoCuota = 2
)

var OperationConditions = map[int]string{
	CondicionContado: "Contado",
	CondicionCredito: "Crédito",
}

var CreditConditions = map[int]string{
	CreditoPlazo: "Plazo",
	CreditoCuota: "Cuota",
}

// =============================================================================
// Afectación tributaria del IVA (iAfecIVA)
// =============================================================================

const (
	IVAGravado        = 1
	IVAExonerado      = 2
	IVAExento         = 3
	IVAGravadoParcial = 4
)

var VATTypes = map[int]string{
	IVAGravado:        "Gravado IVA",
	IVAExonerado:      "Exonerado (Art. 83- Ley 125/91)",
	IVAExento:         "Exento",
	IVAGravadoParcial: "Gravado parcial (Grav-Exento)",
}

// =============================================================================
// Unidades de medida (cUniMed) de uso frecuente
// =============================================================================

const UnidadUnidad = 77

var MeasurementUnits = map[int]string{
	77: "UNI",
	83: "kg",
	87: "m",
	89: "l",
}

// =============================================================================
// Conformidad (iTipConf) y tipo de receptor en eventos (iTipRec)
// =============================================================================

const (
	ConformidadTotal   = 1
	ConformidadParcial = 2
)
