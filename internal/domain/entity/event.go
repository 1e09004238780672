package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// ErrUnsupportedEvent el nombre o valor no corresponde a ninguno de los seis eventos.
var ErrUnsupportedEvent = errors.New("tipo de evento no soportado")

// EventType tipo de evento SIFEN. Conjunto cerrado: cada valor tiene su variante de EventData.
type EventType int

const (
	EventCancelacion     EventType = iota + 1 // emisor: cancelación de un DE aprobado
	EventInutilizacion                        // emisor: inutilización de un rango de numeración
	EventConformidad                          // receptor
	EventDisconformidad                       // receptor
	EventDesconocimiento                      // receptor
	EventNotificacion                         // receptor: notificación de recepción
)

var eventTypeNames = map[EventType]string{
	EventCancelacion:     "cancelacion",
	EventInutilizacion:   "inutilizacion",
	EventConformidad:     "conformidad",
	EventDisconformidad:  "disconformidad",
	EventDesconocimiento: "desconocimiento",
	EventNotificacion:    "notificacion",
}

// Alias aceptados en la entrada (nombres en inglés).
var eventTypeAliases = map[string]EventType{
	"cancellation":  EventCancelacion,
	"nullification": EventInutilizacion,
	"conformity":    EventConformidad,
	"nonconformity": EventDisconformidad,
	"unknown":       EventDesconocimiento,
	"notification":  EventNotificacion,
}

// EventTypes todos los tipos en orden.
func EventTypes() []EventType {
	return []EventType{
		EventCancelacion, EventInutilizacion, EventConformidad,
		EventDisconformidad, EventDesconocimiento, EventNotificacion,
	}
}

func (t EventType) String() string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("evento(%d)", int(t))
}

// Valid indica si t es uno de los seis tipos definidos.
func (t EventType) Valid() bool {
	_, ok := eventTypeNames[t]
	return ok
}

// ParseEventType resuelve el nombre de un evento. Error si el tipo no está soportado.
func ParseEventType(s string) (EventType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	for t, n := range eventTypeNames {
		if n == key {
			return t, nil
		}
	}
	if t, ok := eventTypeAliases[key]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedEvent, s)
}

// EventData datos de un evento. Implementado solo por las variantes de este paquete.
type EventData interface {
	Type() EventType
	eventData()
}

// CancellationEvent cancelación de un DE (rGeVeCan).
type CancellationEvent struct {
	CDC    string `json:"cdc"`
	Motivo string `json:"motivo"`
}

// NullificationEvent inutilización de un rango de numeración (rGeVeInu).
type NullificationEvent struct {
	TipoDocumento   int        `json:"tipoDocumento"`
	Establecimiento sifen.Code `json:"establecimiento"`
	Punto           sifen.Code `json:"punto"`
	NumeroInicial   sifen.Code `json:"numeroInicial"`
	NumeroFinal     sifen.Code `json:"numeroFinal"`
	Motivo          string     `json:"motivo"`
}

// ConformityEvent conformidad del receptor (rGeVeConf).
type ConformityEvent struct {
	CDC             string `json:"cdc"`
	TipoConformidad int    `json:"tipoConformidad,omitempty"` // 0 => total
	FechaRecepcion  string `json:"fechaRecepcion,omitempty"`  // obligatoria en conformidad parcial
}

// NonConformityEvent disconformidad del receptor (rGeVeDisconf).
type NonConformityEvent struct {
	CDC    string `json:"cdc"`
	Motivo string `json:"motivo"`
}

// EventReceiver identificación del receptor en eventos de desconocimiento y notificación.
type EventReceiver struct {
	FechaEmision    string `json:"fechaEmision"`
	FechaRecepcion  string `json:"fechaRecepcion"`
	TipoReceptor    int    `json:"tipoReceptor"` // 1 contribuyente, 2 no contribuyente
	Nombre          string `json:"nombre"`
	RUC             string `json:"ruc,omitempty"`
	DocumentoTipo   int    `json:"documentoTipo,omitempty"`
	DocumentoNumero string `json:"documentoNumero,omitempty"`
}

// RepudiationEvent desconocimiento del DE por el receptor (rGeVeDescon).
type RepudiationEvent struct {
	CDC string `json:"cdc"`
	EventReceiver
	Motivo string `json:"motivo"`
}

// ReceiptNotificationEvent notificación de recepción del DE (rGeVeNotRec).
type ReceiptNotificationEvent struct {
	CDC string `json:"cdc"`
	EventReceiver
	TotalGeneral sifen.Amount `json:"totalGeneral"`
}

func (*CancellationEvent) Type() EventType        { return EventCancelacion }
func (*NullificationEvent) Type() EventType       { return EventInutilizacion }
func (*ConformityEvent) Type() EventType          { return EventConformidad }
func (*NonConformityEvent) Type() EventType       { return EventDisconformidad }
func (*RepudiationEvent) Type() EventType         { return EventDesconocimiento }
func (*ReceiptNotificationEvent) Type() EventType { return EventNotificacion }

func (*CancellationEvent) eventData()        {}
func (*NullificationEvent) eventData()       {}
func (*ConformityEvent) eventData()          {}
func (*NonConformityEvent) eventData()       {}
func (*RepudiationEvent) eventData()         {}
func (*ReceiptNotificationEvent) eventData() {}

// TargetCDC CDC del documento al que se refiere el evento; vacío en inutilización.
func TargetCDC(ev EventData) string {
	switch e := ev.(type) {
	case *CancellationEvent:
		return e.CDC
	case *ConformityEvent:
		return e.CDC
	case *NonConformityEvent:
		return e.CDC
	case *RepudiationEvent:
		return e.CDC
	case *ReceiptNotificationEvent:
		return e.CDC
	}
	return ""
}

// DecodeEvent decodifica el JSON de un evento en la variante correspondiente a t.
// Las variantes se devuelven como puntero.
func DecodeEvent(t EventType, raw []byte) (EventData, error) {
	var ev EventData
	switch t {
	case EventCancelacion:
		ev = &CancellationEvent{}
	case EventInutilizacion:
		ev = &NullificationEvent{}
	case EventConformidad:
		ev = &ConformityEvent{}
	case EventDisconformidad:
		ev = &NonConformityEvent{}
	case EventDesconocimiento:
		ev = &RepudiationEvent{}
	case EventNotificacion:
		ev = &ReceiptNotificationEvent{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, t)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("evento %s: %w", t, err)
		}
	}
	return ev, nil
}
