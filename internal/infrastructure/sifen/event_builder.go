package sifen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/jonboulle/clockwork"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

const (
	schemaPrefixEvento = "siRecepEvento"
	maxMotivo          = 500
)

var eventIDPattern = regexp.MustCompile(`^\d{1,10}$`)

// Elemento de cada tipo de evento dentro de gGroupTiEvt.
var eventElements = map[entity.EventType]string{
	entity.EventCancelacion:     "rGeVeCan",
	entity.EventInutilizacion:   "rGeVeInu",
	entity.EventConformidad:     "rGeVeConf",
	entity.EventDisconformidad:  "rGeVeDisconf",
	entity.EventDesconocimiento: "rGeVeDescon",
	entity.EventNotificacion:    "rGeVeNotRec",
}

// EventElement nombre del elemento XML del evento (rGeVeCan, rGeVeInu...).
func EventElement(t entity.EventType) string {
	return eventElements[t]
}

// EventBuilderService arma el XML rEvento de los seis tipos de evento (sin firma).
type EventBuilderService struct {
	validator *rules.Validator
	clock     clockwork.Clock
}

// NewEventBuilderService crea el servicio. clock nil => reloj real.
func NewEventBuilderService(validator *rules.Validator, clock clockwork.Clock) *EventBuilderService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validator == nil {
		validator = rules.NewValidator(clock)
	}
	return &EventBuilderService{validator: validator, clock: clock}
}

// Build valida el evento y arma rEvento → rEve Id → emisor → gGroupTiEvt → variante.
// id es el identificador numérico del evento asignado por el emisor.
func (s *EventBuilderService) Build(id string, params *entity.ContributorParams, ev entity.EventData, opts Options) (string, error) {
	opts = opts.Normalize()
	res := s.validator.ValidateEvent(params, ev)
	if !eventIDPattern.MatchString(strings.TrimSpace(id)) {
		res.Valid = false
		res.Errors = append([]string{fmt.Sprintf("id %q debe ser numérico (hasta 10 dígitos)", id)}, res.Errors...)
	}
	if err := opts.validationError(res); err != nil {
		return "", err
	}

	version := params.SchemaVersion()
	root := newRoot("rEvento", schemaFile(schemaPrefixEvento, version))
	eve := root.CreateElement("rEve")
	eve.CreateAttr("Id", strings.TrimSpace(id))
	addText(eve, "dFecFirma", s.clock.Now().Format(sifen.LayoutDateTime))
	addInt(eve, "dVerFor", version)

	body, dv, err := rules.SplitRUC("ruc", params.RUC)
	if err != nil {
		return "", err
	}
	emis := eve.CreateElement("gEmis")
	addText(emis, "dRucEm", body)
	addText(emis, "dDVEmi", dv)

	group := eve.CreateElement("gGroupTiEvt")
	payload := group.CreateElement(EventElement(ev.Type()))
	if err := writeEvent(payload, ev); err != nil {
		return "", err
	}
	return render(root)
}

func writeEvent(g *etree.Element, ev entity.EventData) error {
	switch e := ev.(type) {
	case *entity.CancellationEvent:
		addText(g, "Id", e.CDC)
		addClean(g, "mOtEve", e.Motivo, maxMotivo)
	case *entity.NullificationEvent:
		addInt(g, "iTiDE", e.TipoDocumento)
		addText(g, "dEst", sifen.FormatCode(e.Establecimiento.String(), 3))
		addText(g, "dPunExp", sifen.FormatCode(e.Punto.String(), 3))
		addText(g, "dNumIn", sifen.FormatCode(e.NumeroInicial.String(), 7))
		addText(g, "dNumFin", sifen.FormatCode(e.NumeroFinal.String(), 7))
		addClean(g, "mOtEve", e.Motivo, maxMotivo)
	case *entity.ConformityEvent:
		addText(g, "Id", e.CDC)
		tipo := e.TipoConformidad
		if tipo == 0 {
			tipo = sifen.ConformidadTotal
		}
		addInt(g, "iTipConf", tipo)
		if e.FechaRecepcion != "" {
			fecha, err := sifen.FormatDateTime(e.FechaRecepcion)
			if err != nil {
				return &rules.AssemblyError{Field: "fechaRecepcion", Reason: err.Error()}
			}
			addText(g, "dFecRecep", fecha)
		}
	case *entity.NonConformityEvent:
		addText(g, "Id", e.CDC)
		addClean(g, "mOtEve", e.Motivo, maxMotivo)
	case *entity.RepudiationEvent:
		addText(g, "Id", e.CDC)
		if err := writeEventReceiver(g, &e.EventReceiver); err != nil {
			return err
		}
		addClean(g, "mOtEve", e.Motivo, maxMotivo)
	case *entity.ReceiptNotificationEvent:
		addText(g, "Id", e.CDC)
		if err := writeEventReceiver(g, &e.EventReceiver); err != nil {
			return err
		}
		total, err := sifen.FormatAmount(e.TotalGeneral, 0)
		if err != nil {
			return &rules.AssemblyError{Field: "totalGeneral", Reason: err.Error()}
		}
		addText(g, "dTotalGs", total)
	default:
		return &rules.AssemblyError{Field: "evento", Reason: fmt.Sprintf("tipo no soportado %T", ev)}
	}
	return nil
}

func writeEventReceiver(g *etree.Element, r *entity.EventReceiver) error {
	emision, err := sifen.FormatDateTime(r.FechaEmision)
	if err != nil {
		return &rules.AssemblyError{Field: "fechaEmision", Reason: err.Error()}
	}
	recepcion, err := sifen.FormatDateTime(r.FechaRecepcion)
	if err != nil {
		return &rules.AssemblyError{Field: "fechaRecepcion", Reason: err.Error()}
	}
	addText(g, "dFecEmi", emision)
	addText(g, "dFecRecep", recepcion)
	addInt(g, "iTipRec", r.TipoReceptor)
	addClean(g, "dNomRec", r.Nombre, maxNombre)
	if r.TipoReceptor == sifen.NaturalezaContribuyente {
		body, dv, err := rules.SplitRUC("ruc del receptor", r.RUC)
		if err != nil {
			return err
		}
		addText(g, "dRucRec", body)
		addText(g, "dDVRec", dv)
		return nil
	}
	addInt(g, "dTipIDRec", r.DocumentoTipo)
	addClean(g, "dNumID", r.DocumentoNumero, 20)
	return nil
}
