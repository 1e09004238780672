package sifen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// CDCLength longitud fija del CDC.
const CDCLength = 44

// Ventana admitida para la fecha de emisión respecto de "ahora".
const (
	maxFutureIssue = 24 * time.Hour
	maxPastMonths  = 6
)

// Validator evalúa las reglas de negocio sobre los datos de entrada. No guarda estado
// entre llamadas; "ahora" se lee del reloj en cada validación.
type Validator struct {
	clock clockwork.Clock
}

// NewValidator crea el validador. clock nil => reloj real.
func NewValidator(clock clockwork.Clock) *Validator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Validator{clock: clock}
}

// errList acumula mensajes en orden.
type errList []string

func (l *errList) add(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l *errList) required(field string, present bool) bool {
	if !present {
		l.add("%s es obligatorio", field)
	}
	return present
}

// ValidateDocument valida parámetros del contribuyente, datos del documento, cliente e ítems,
// en ese orden. Nunca falla: los problemas se devuelven en Result.Errors.
func (v *Validator) ValidateDocument(params *entity.ContributorParams, data *entity.DocumentData) Result {
	var errs errList
	now := v.clock.Now()

	v.checkParams(&errs, params, now)

	if data == nil {
		errs.add("datos del documento son obligatorios")
		return newResult(errs)
	}
	v.checkDocument(&errs, data, now)

	if data.Cliente != nil {
		checkClient(&errs, data.Cliente)
	}
	for i := range data.Items {
		var itemErrs errList
		checkItem(&itemErrs, &data.Items[i])
		for _, msg := range itemErrs {
			errs.add("item[%d]: %s", i, msg)
		}
	}
	return newResult(errs)
}

func (v *Validator) checkParams(errs *errList, p *entity.ContributorParams, now time.Time) {
	if p == nil {
		errs.add("parámetros del contribuyente son obligatorios")
		return
	}
	rucOK := errs.required("ruc", strings.TrimSpace(p.RUC) != "")
	errs.required("razonSocial", strings.TrimSpace(p.RazonSocial) != "")
	errs.required("timbradoNumero", strings.TrimSpace(p.TimbradoNumero.String()) != "")
	fechaOK := errs.required("timbradoFecha", strings.TrimSpace(p.TimbradoFecha) != "")
	errs.required("tipoContribuyente", p.TipoContribuyente != 0)
	errs.required("tipoRegimen", p.TipoRegimen != 0)

	if rucOK && !ValidRUC(p.RUC) {
		errs.add("ruc %q con formato inválido, se espera dígitos-dígito", p.RUC)
	}
	if p.TimbradoNumero != "" && !digitsPattern.MatchString(strings.TrimSpace(p.TimbradoNumero.String())) {
		errs.add("timbradoNumero debe ser numérico")
	}
	if fechaOK {
		t, err := sifen.ParseDateTime(p.TimbradoFecha)
		switch {
		case err != nil:
			errs.add("timbradoFecha %q no es una fecha válida", p.TimbradoFecha)
		case startOfDay(t).After(startOfDay(now)):
			errs.add("timbradoFecha no puede ser una fecha futura")
		}
	}
	if p.TipoContribuyente != 0 && p.TipoContribuyente != sifen.ContribuyenteFisica && p.TipoContribuyente != sifen.ContribuyenteJuridica {
		errs.add("tipoContribuyente %d no es válido", p.TipoContribuyente)
	}
	if len(p.Establecimientos) == 0 {
		errs.add("establecimientos: se requiere al menos un establecimiento")
	}
	for i, est := range p.Establecimientos {
		if strings.TrimSpace(est.Codigo.String()) == "" {
			errs.add("establecimientos[%d].codigo es obligatorio", i)
		}
	}
}

func (v *Validator) checkDocument(errs *errList, d *entity.DocumentData, now time.Time) {
	tipoOK := errs.required("tipoDocumento", d.TipoDocumento != 0)
	estOK := errs.required("establecimiento", strings.TrimSpace(d.Establecimiento.String()) != "")
	puntoOK := errs.required("punto", strings.TrimSpace(d.Punto.String()) != "")
	numOK := errs.required("numero", strings.TrimSpace(d.Numero.String()) != "")
	fechaOK := errs.required("fecha", strings.TrimSpace(d.Fecha) != "")

	if tipoOK {
		if _, ok := sifen.DocumentTypes[d.TipoDocumento]; !ok {
			errs.add("tipoDocumento %d no es válido (1..8)", d.TipoDocumento)
		}
	}
	if estOK && !code3Pattern.MatchString(strings.TrimSpace(d.Establecimiento.String())) {
		errs.add("establecimiento debe tener entre 1 y 3 dígitos")
	}
	if puntoOK && !code3Pattern.MatchString(strings.TrimSpace(d.Punto.String())) {
		errs.add("punto debe tener entre 1 y 3 dígitos")
	}
	if numOK && !code7Pattern.MatchString(strings.TrimSpace(d.Numero.String())) {
		errs.add("numero debe tener entre 1 y 7 dígitos")
	}
	if fechaOK {
		t, err := sifen.ParseDateTime(d.Fecha)
		switch {
		case err != nil:
			errs.add("fecha %q no es una fecha válida", d.Fecha)
		case t.After(now.Add(maxFutureIssue)):
			errs.add("fecha no puede ser posterior a un día en el futuro")
		case t.Before(now.AddDate(0, -maxPastMonths, 0)):
			errs.add("fecha no puede tener más de %d meses de antigüedad", maxPastMonths)
		}
	}

	if d.TipoEmision != 0 {
		if _, ok := sifen.EmissionTypes[d.TipoEmision]; !ok {
			errs.add("tipoEmision %d no es válido", d.TipoEmision)
		}
	}
	if c := strings.TrimSpace(d.CodigoSeguridadAleatorio.String()); c != "" && !codSegPattern.MatchString(c) {
		errs.add("codigoSeguridadAleatorio debe tener entre 1 y 9 dígitos")
	}
	if d.CDC != "" && !ValidCDC(d.CDC) {
		errs.add("cdc debe tener %d dígitos con dígito verificador correcto", CDCLength)
	}
	if d.Moneda != "" && utf8.RuneCountInString(d.Moneda) != 3 {
		errs.add("moneda %q debe ser un código ISO 4217 de 3 letras", d.Moneda)
	}
	if d.Condicion != nil {
		checkCondition(errs, d.Condicion)
	}
}

func checkCondition(errs *errList, c *entity.OperationCondition) {
	if _, ok := sifen.OperationConditions[c.Tipo]; !ok {
		errs.add("condicion.tipo %d no es válido (1 contado, 2 crédito)", c.Tipo)
		return
	}
	if c.Tipo != sifen.CondicionCredito {
		return
	}
	if c.Credito == nil {
		errs.add("condicion.credito es obligatorio en operaciones a crédito")
		return
	}
	switch c.Credito.Tipo {
	case sifen.CreditoPlazo:
		errs.required("condicion.credito.plazo", strings.TrimSpace(c.Credito.Plazo) != "")
	case sifen.CreditoCuota:
		if len(c.Credito.Cuotas) == 0 {
			errs.add("condicion.credito.cuotas: se requiere al menos una cuota")
		}
	default:
		errs.add("condicion.credito.tipo %d no es válido (1 plazo, 2 cuotas)", c.Credito.Tipo)
	}
	for i, q := range c.Credito.Cuotas {
		if _, err := q.Monto.Decimal(); err != nil {
			errs.add("condicion.credito.cuotas[%d].monto debe ser numérico", i)
		}
		if q.Vencimiento != "" {
			if _, err := sifen.ParseDateTime(q.Vencimiento); err != nil {
				errs.add("condicion.credito.cuotas[%d].vencimiento %q no es una fecha válida", i, q.Vencimiento)
			}
		}
	}
}

func checkClient(errs *errList, c *entity.Client) {
	errs.required("cliente.razonSocial", strings.TrimSpace(c.RazonSocial) != "")
	if c.Contribuyente {
		if errs.required("cliente.ruc", strings.TrimSpace(c.RUC) != "") && !ValidRUC(c.RUC) {
			errs.add("cliente.ruc %q con formato inválido, se espera dígitos-dígito", c.RUC)
		}
		return
	}
	errs.required("cliente.documentoTipo", c.DocumentoTipo != 0)
	errs.required("cliente.documentoNumero", strings.TrimSpace(c.DocumentoNumero) != "")
	if c.DocumentoTipo != 0 {
		if _, ok := sifen.IdentityDocumentTypes[c.DocumentoTipo]; !ok {
			errs.add("cliente.documentoTipo %d no es válido", c.DocumentoTipo)
		}
	}
}

func checkItem(errs *errList, it *entity.Item) {
	errs.required("descripcion", strings.TrimSpace(it.Descripcion) != "")
	if errs.required("cantidad", !it.Cantidad.IsZero()) {
		q, err := it.Cantidad.Decimal()
		switch {
		case err != nil:
			errs.add("cantidad debe ser numérica")
		case !q.IsPositive():
			errs.add("cantidad debe ser mayor a 0")
		}
	}
	if errs.required("precioUnitario", !it.PrecioUnitario.IsZero()) {
		p, err := it.PrecioUnitario.Decimal()
		switch {
		case err != nil:
			errs.add("precioUnitario debe ser numérico")
		case p.IsNegative():
			errs.add("precioUnitario no puede ser negativo")
		}
	}
	if it.IVA == nil {
		return
	}
	if errs.required("iva.tipo", it.IVA.Tipo != 0) {
		if _, ok := sifen.VATTypes[it.IVA.Tipo]; !ok {
			errs.add("iva.tipo %d no es válido", it.IVA.Tipo)
		}
	}
	checkNumeric(errs, "iva.base", it.IVA.Base, true)
	checkNumeric(errs, "iva.porcentaje", it.IVA.Porcentaje, true)
	checkNumeric(errs, "iva.monto", it.IVA.Monto, false)
}

func checkNumeric(errs *errList, field string, a sifen.Amount, required bool) {
	if a.IsZero() {
		if required {
			errs.add("%s es obligatorio", field)
		}
		return
	}
	if _, err := a.Decimal(); err != nil {
		errs.add("%s debe ser numérico", field)
	}
}

// ValidateEvent valida el RUC del emisor y luego las reglas propias de cada evento.
func (v *Validator) ValidateEvent(params *entity.ContributorParams, ev entity.EventData) Result {
	var errs errList
	switch {
	case params == nil || strings.TrimSpace(params.RUC) == "":
		errs.add("ruc es obligatorio")
	case !ValidRUC(params.RUC):
		errs.add("ruc %q con formato inválido, se espera dígitos-dígito", params.RUC)
	}

	if ev != nil && isNilEvent(ev) {
		errs.add("datos del evento %s son obligatorios", ev.Type())
		return newResult(errs)
	}

	switch e := ev.(type) {
	case *entity.CancellationEvent:
		checkCDC(&errs, e.CDC)
		errs.required("motivo", strings.TrimSpace(e.Motivo) != "")
	case *entity.NullificationEvent:
		checkNullification(&errs, e)
	case *entity.ConformityEvent:
		checkCDC(&errs, e.CDC)
		switch e.TipoConformidad {
		case 0, sifen.ConformidadTotal:
		case sifen.ConformidadParcial:
			v.checkEventDate(&errs, "fechaRecepcion", e.FechaRecepcion)
		default:
			errs.add("tipoConformidad %d no es válido (1 total, 2 parcial)", e.TipoConformidad)
		}
	case *entity.NonConformityEvent:
		checkCDC(&errs, e.CDC)
		errs.required("motivo", strings.TrimSpace(e.Motivo) != "")
	case *entity.RepudiationEvent:
		checkCDC(&errs, e.CDC)
		v.checkReceiver(&errs, &e.EventReceiver)
		errs.required("motivo", strings.TrimSpace(e.Motivo) != "")
	case *entity.ReceiptNotificationEvent:
		checkCDC(&errs, e.CDC)
		v.checkReceiver(&errs, &e.EventReceiver)
		checkNumeric(&errs, "totalGeneral", e.TotalGeneral, true)
	default:
		errs.add("tipo de evento no soportado: %T", ev)
	}
	return newResult(errs)
}

func isNilEvent(ev entity.EventData) bool {
	switch e := ev.(type) {
	case *entity.CancellationEvent:
		return e == nil
	case *entity.NullificationEvent:
		return e == nil
	case *entity.ConformityEvent:
		return e == nil
	case *entity.NonConformityEvent:
		return e == nil
	case *entity.RepudiationEvent:
		return e == nil
	case *entity.ReceiptNotificationEvent:
		return e == nil
	}
	return false
}

func checkCDC(errs *errList, cdc string) {
	if errs.required("cdc", strings.TrimSpace(cdc) != "") && utf8.RuneCountInString(cdc) != CDCLength {
		errs.add("cdc debe tener exactamente %d caracteres", CDCLength)
	}
}

func checkNullification(errs *errList, e *entity.NullificationEvent) {
	tipoOK := errs.required("tipoDocumento", e.TipoDocumento != 0)
	estOK := errs.required("establecimiento", strings.TrimSpace(e.Establecimiento.String()) != "")
	puntoOK := errs.required("punto", strings.TrimSpace(e.Punto.String()) != "")
	iniOK := errs.required("numeroInicial", strings.TrimSpace(e.NumeroInicial.String()) != "")
	finOK := errs.required("numeroFinal", strings.TrimSpace(e.NumeroFinal.String()) != "")
	errs.required("motivo", strings.TrimSpace(e.Motivo) != "")

	if tipoOK {
		if _, ok := sifen.DocumentTypes[e.TipoDocumento]; !ok {
			errs.add("tipoDocumento %d no es válido (1..8)", e.TipoDocumento)
		}
	}
	if estOK && !code3Pattern.MatchString(strings.TrimSpace(e.Establecimiento.String())) {
		errs.add("establecimiento debe tener entre 1 y 3 dígitos")
	}
	if puntoOK && !code3Pattern.MatchString(strings.TrimSpace(e.Punto.String())) {
		errs.add("punto debe tener entre 1 y 3 dígitos")
	}
	if !iniOK || !finOK {
		return
	}
	ini, errIni := strconv.Atoi(strings.TrimSpace(e.NumeroInicial.String()))
	fin, errFin := strconv.Atoi(strings.TrimSpace(e.NumeroFinal.String()))
	if errIni != nil || !code7Pattern.MatchString(strings.TrimSpace(e.NumeroInicial.String())) {
		errs.add("numeroInicial debe tener entre 1 y 7 dígitos")
		return
	}
	if errFin != nil || !code7Pattern.MatchString(strings.TrimSpace(e.NumeroFinal.String())) {
		errs.add("numeroFinal debe tener entre 1 y 7 dígitos")
		return
	}
	if fin < ini {
		errs.add("numeroFinal (%d) debe ser mayor o igual a numeroInicial (%d)", fin, ini)
	}
}

func (v *Validator) checkReceiver(errs *errList, r *entity.EventReceiver) {
	v.checkEventDate(errs, "fechaEmision", r.FechaEmision)
	v.checkEventDate(errs, "fechaRecepcion", r.FechaRecepcion)
	errs.required("nombre", strings.TrimSpace(r.Nombre) != "")
	switch r.TipoReceptor {
	case sifen.NaturalezaContribuyente:
		if errs.required("ruc del receptor", strings.TrimSpace(r.RUC) != "") && !ValidRUC(r.RUC) {
			errs.add("ruc del receptor %q con formato inválido", r.RUC)
		}
	case sifen.NaturalezaNoContribuyente:
		errs.required("documentoTipo", r.DocumentoTipo != 0)
		errs.required("documentoNumero", strings.TrimSpace(r.DocumentoNumero) != "")
	case 0:
		errs.add("tipoReceptor es obligatorio")
	default:
		errs.add("tipoReceptor %d no es válido (1 contribuyente, 2 no contribuyente)", r.TipoReceptor)
	}
}

func (v *Validator) checkEventDate(errs *errList, field, value string) {
	if !errs.required(field, strings.TrimSpace(value) != "") {
		return
	}
	t, err := sifen.ParseDateTime(value)
	if err != nil {
		errs.add("%s %q no es una fecha válida", field, value)
		return
	}
	if t.After(v.clock.Now().Add(maxFutureIssue)) {
		errs.add("%s no puede ser una fecha futura", field)
	}
}

// ValidCDC indica si cdc tiene 44 dígitos y su último dígito es el DV de los 43 anteriores.
func ValidCDC(cdc string) bool {
	if len(cdc) != CDCLength || !digitsPattern.MatchString(cdc) {
		return false
	}
	return strconv.Itoa(sifen.CalculateDV(cdc[:CDCLength-1])) == cdc[CDCLength-1:]
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
