package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// GenerateRequest body de POST /api/sifen/xml, /cdc, /validate y /api/documents.
// Options es opcional y se superpone a las opciones configuradas.
type GenerateRequest struct {
	Params  *entity.ContributorParams `json:"params"`
	Data    *entity.DocumentData      `json:"data"`
	Options json.RawMessage           `json:"options,omitempty"`
}

// EventRequest body de POST /api/sifen/events/xml y /api/documents/events.
// Evento se decodifica según Tipo (cancelacion, inutilizacion, conformidad...).
type EventRequest struct {
	ID      string                    `json:"id"`
	Tipo    string                    `json:"tipo"`
	Params  *entity.ContributorParams `json:"params"`
	Evento  json.RawMessage           `json:"evento"`
	Options json.RawMessage           `json:"options,omitempty"`
}

// Decode resuelve el tipo y decodifica la variante del evento.
func (r *EventRequest) Decode() (entity.EventData, error) {
	t, err := entity.ParseEventType(r.Tipo)
	if err != nil {
		return nil, err
	}
	return entity.DecodeEvent(t, r.Evento)
}

// QRRequest body de POST /api/sifen/qr: documento ya emitido.
type QRRequest struct {
	CDC         string          `json:"cdc"`
	Fecha       string          `json:"fecha"`
	RucReceptor string          `json:"rucReceptor"`
	Total       decimal.Decimal `json:"total"`
	IVA         decimal.Decimal `json:"iva"`
	XML         string          `json:"xml,omitempty"`
}

// MergeOptions aplica el JSON de opciones sobre base. raw vacío => nil (usar las configuradas).
func MergeOptions(base infra.Options, raw json.RawMessage) (*infra.Options, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	opts := base
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	return &opts, nil
}

// XMLResponse respuesta de la generación del DE.
type XMLResponse struct {
	CDC          string          `json:"cdc"`
	XML          string          `json:"xml"`
	TotalGeneral decimal.Decimal `json:"totalGeneral"`
	TotalIVA     decimal.Decimal `json:"totalIva"`
}

// CDCResponse respuesta de POST /api/sifen/cdc.
type CDCResponse struct {
	CDC string `json:"cdc"`
}

// EventXMLResponse respuesta de POST /api/sifen/events/xml.
type EventXMLResponse struct {
	ID   string `json:"id"`
	Tipo string `json:"tipo"`
	XML  string `json:"xml"`
}

// QRResponse payload y URL de consulta.
type QRResponse struct {
	Payload string `json:"payload"`
	URL     string `json:"url"`
}

// ValidationErrorResponse cuerpo de 400 con la lista completa de errores de negocio.
type ValidationErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// DocumentResponse documento guardado. El XML solo se incluye en GET /api/documents/:id.
type DocumentResponse struct {
	ID            string          `json:"id"`
	CDC           string          `json:"cdc"`
	TipoDocumento int             `json:"tipoDocumento"`
	Numero        string          `json:"numero"`
	Fecha         string          `json:"fecha"`
	RucReceptor   string          `json:"rucReceptor,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Impuesto      decimal.Decimal `json:"impuesto"`
	Estado        string          `json:"estado"`
	QRData        string          `json:"qrData,omitempty"`
	XML           string          `json:"xml,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// DocumentFromEntity arma la respuesta; withXML incluye el XML completo.
func DocumentFromEntity(d *entity.Document, withXML bool) DocumentResponse {
	out := DocumentResponse{
		ID:            d.ID,
		CDC:           d.CDC,
		TipoDocumento: d.TipoDocumento,
		Numero:        d.Numero,
		Fecha:         d.Fecha.Format(sifen.LayoutDateTime),
		RucReceptor:   d.RucReceptor,
		Total:         d.Total,
		Impuesto:      d.Impuesto,
		Estado:        d.Estado,
		QRData:        d.QRData,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if withXML {
		out.XML = d.XML
	}
	return out
}

// EventResponse evento registrado.
type EventResponse struct {
	ID          string          `json:"id"`
	DocumentID  string          `json:"documentId,omitempty"`
	Tipo        string          `json:"tipo"`
	Descripcion string          `json:"descripcion"`
	Datos       json.RawMessage `json:"datos,omitempty"`
	XML         string          `json:"xml,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// EventFromEntity arma la respuesta del evento.
func EventFromEntity(e *entity.DocumentEvent, withXML bool) EventResponse {
	out := EventResponse{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		Tipo:        e.Tipo,
		Descripcion: e.Descripcion,
		Datos:       json.RawMessage(e.Datos),
		CreatedAt:   e.CreatedAt,
	}
	if withXML {
		out.XML = e.XML
	}
	return out
}

// SendResponse resultado del envío al SIFEN.
type SendResponse struct {
	Protocolo string   `json:"protocolo,omitempty"`
	Aceptado  bool     `json:"aceptado"`
	Mensajes  []string `json:"mensajes,omitempty"`
}
