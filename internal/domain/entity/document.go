package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del documento electrónico.
const (
	EstadoGenerado  = "GENERADO"  // XML generado, sin firma
	EstadoFirmado   = "FIRMADO"   // XML firmado, pendiente de envío
	EstadoEnviado   = "ENVIADO"   // Enviado al SIFEN, respuesta pendiente
	EstadoAprobado  = "APROBADO"  // Aprobado por la SET
	EstadoRechazado = "RECHAZADO" // Rechazado por la SET
	EstadoCancelado = "CANCELADO" // Evento de cancelación registrado
)

// Document registro persistido de un DE.
type Document struct {
	ID            string
	CDC           string // 44 dígitos, inmutable
	TipoDocumento int
	Numero        string // 001-001-0000001
	XML           string
	Fecha         time.Time
	RucReceptor   string // RUC o documento de identidad del receptor
	Total         decimal.Decimal
	Impuesto      decimal.Decimal
	Estado        string
	QRData        string // nVersion=150&Id=...&IdCSC=...
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DocumentEvent evento registrado sobre un documento (o sobre un rango, en inutilización).
type DocumentEvent struct {
	ID          string
	DocumentID  string // vacío en inutilización
	Tipo        string // EventType.String()
	Descripcion string
	Datos       []byte // JSON de la variante de EventData
	XML         string
	CreatedAt   time.Time
}
