package sifen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Longitudes máximas de campos de texto libre (Manual Técnico v150).
const (
	maxNombre      = 255
	maxDireccion   = 255
	maxNumeroCasa  = 6
	maxDescripcion = 120
	maxCodigoItem  = 20
	maxInfo        = 3000
	maxTelefono    = 15
	maxEmail       = 80
	maxPlazo       = 15
)

// Presencia del comprador (gCamFE), solo factura electrónica.
const (
	presenciaPresencial     = 1
	presenciaPresencialDesc = "Operación presencial"
	sistemaFacturacion      = 1 // dSisFact: sistema del contribuyente
	proporcionGravada       = 100
	schemaPrefixDE          = "siRecepDE"
)

// BuildResult resultado de armar un DE.
type BuildResult struct {
	XML    string
	CDC    string
	Totals rules.Totals
}

// XMLBuilderService arma el XML rDE de un documento electrónico (sin firma).
type XMLBuilderService struct {
	validator *rules.Validator
	cdc       *rules.CDCGeneratorService
	clock     clockwork.Clock
}

// NewXMLBuilderService crea el servicio. clock nil => reloj real.
func NewXMLBuilderService(validator *rules.Validator, cdc *rules.CDCGeneratorService, clock clockwork.Clock) *XMLBuilderService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validator == nil {
		validator = rules.NewValidator(clock)
	}
	if cdc == nil {
		cdc = rules.NewCDCGeneratorService()
	}
	return &XMLBuilderService{validator: validator, cdc: cdc, clock: clock}
}

// docContext datos resueltos antes de armar el árbol.
type docContext struct {
	params   *entity.ContributorParams
	data     *entity.DocumentData
	opts     Options
	cdc      string
	currency string
	totals   rules.Totals
}

// Build valida, obtiene el CDC (el informado o uno nuevo) y arma el XML.
// Si la validación falla devuelve *rules.ValidationError y no arma ningún árbol.
func (s *XMLBuilderService) Build(params *entity.ContributorParams, data *entity.DocumentData, opts Options) (*BuildResult, error) {
	opts = opts.Normalize()
	if err := opts.validationError(s.validator.ValidateDocument(params, data)); err != nil {
		return nil, err
	}

	cdc := data.CDC
	if cdc == "" {
		generated, err := s.cdc.Generate(params, data)
		if err != nil {
			return nil, err
		}
		cdc = generated
	}

	ctx := &docContext{
		params:   params,
		data:     data,
		opts:     opts,
		cdc:      cdc,
		currency: strings.ToUpper(data.Currency()),
		totals:   rules.ComputeTotals(data.Items),
	}
	root, err := s.buildTree(ctx)
	if err != nil {
		return nil, err
	}
	out, err := render(root)
	if err != nil {
		return nil, err
	}
	return &BuildResult{XML: out, CDC: cdc, Totals: ctx.totals}, nil
}

func (s *XMLBuilderService) buildTree(ctx *docContext) (*etree.Element, error) {
	version := ctx.params.SchemaVersion()
	root := newRoot("rDE", schemaFile(schemaPrefixDE, version))
	addInt(root, "dVerFor", version)

	de := root.CreateElement("DE")
	de.CreateAttr("Id", ctx.cdc)

	// Cabecera
	addText(de, "dDVId", rules.CheckDigitOf(ctx.cdc))
	addText(de, "dFecFirma", s.clock.Now().Format(sifen.LayoutDateTime))
	addInt(de, "dSisFact", sistemaFacturacion)
	s.writeOperation(de, ctx)
	if err := s.writeTimbrado(de, ctx); err != nil {
		return nil, err
	}

	gral := de.CreateElement("gDatGralOpe")
	fecha, err := sifen.FormatDateTime(ctx.data.Fecha)
	if err != nil {
		return nil, &rules.AssemblyError{Field: "fecha", Reason: err.Error()}
	}
	addText(gral, "dFeEmiDE", fecha)
	s.writeCommercial(gral, ctx)
	if err := s.writeIssuer(gral, ctx); err != nil {
		return nil, err
	}
	if ctx.data.Cliente != nil {
		if err := s.writeReceiver(gral, ctx); err != nil {
			return nil, err
		}
	}

	dtip := de.CreateElement("gDtipDE")
	if ctx.data.TipoDocumento == sifen.TipoFactura && ctx.opts.DefaultValues {
		fe := dtip.CreateElement("gCamFE")
		addInt(fe, "iIndPres", presenciaPresencial)
		addText(fe, "dDesIndPres", presenciaPresencialDesc)
	}
	if ctx.data.Condicion != nil {
		if err := s.writeCondition(dtip, ctx); err != nil {
			return nil, err
		}
	}
	for i := range ctx.data.Items {
		if err := s.writeItem(dtip, ctx, i); err != nil {
			return nil, err
		}
	}

	s.writeTotals(de, ctx)
	return root, nil
}

// writeOperation gOpeDE: tipo de emisión y código de seguridad.
func (s *XMLBuilderService) writeOperation(de *etree.Element, ctx *docContext) {
	g := de.CreateElement("gOpeDE")
	tipo := ctx.data.EmissionType()
	addInt(g, "iTipEmi", tipo)
	addText(g, "dDesTipEmi", sifen.EmissionTypes[tipo])
	addText(g, "dCodSeg", rules.SecurityCodeOf(ctx.cdc))
	addOptClean(g, "dInfoEmi", ctx.data.Observacion, maxInfo)
}

// writeTimbrado gTimb: datos del timbrado y numeración.
func (s *XMLBuilderService) writeTimbrado(de *etree.Element, ctx *docContext) error {
	g := de.CreateElement("gTimb")
	addInt(g, "iTiDE", ctx.data.TipoDocumento)
	addText(g, "dDesTiDE", sifen.DocumentTypes[ctx.data.TipoDocumento])
	addText(g, "dNumTim", strings.TrimSpace(ctx.params.TimbradoNumero.String()))
	addText(g, "dEst", sifen.FormatCode(ctx.data.Establecimiento.String(), 3))
	addText(g, "dPunExp", sifen.FormatCode(ctx.data.Punto.String(), 3))
	addText(g, "dNumDoc", sifen.FormatCode(ctx.data.Numero.String(), 7))
	inicio, err := sifen.FormatDate(ctx.params.TimbradoFecha)
	if err != nil {
		return &rules.AssemblyError{Field: "timbradoFecha", Reason: err.Error()}
	}
	addText(g, "dFeIniT", inicio)
	return nil
}

// writeCommercial gOpeCom: tipo de transacción, impuesto y moneda.
func (s *XMLBuilderService) writeCommercial(gral *etree.Element, ctx *docContext) {
	g := gral.CreateElement("gOpeCom")
	tipoTra := ctx.data.TipoTransaccion
	tipoImp := ctx.data.TipoImpuesto
	if ctx.opts.DefaultValues {
		if tipoTra == 0 {
			tipoTra = 1 // venta de mercadería
		}
		if tipoImp == 0 {
			tipoImp = 1 // IVA
		}
	}
	if ctx.data.TipoDocumento == sifen.TipoFactura || ctx.data.TipoDocumento == sifen.TipoAutofactura {
		addOptInt(g, "iTipTra", tipoTra)
	}
	addOptInt(g, "iTImp", tipoImp)
	addText(g, "cMoneOpe", ctx.currency)
	if ctx.currency == sifen.DefaultMoneda {
		addText(g, "dDesMoneOpe", sifen.MonedaDesc)
	}
}

// writeIssuer gEmis: RUC separado en cuerpo y DV, razón social y dirección del establecimiento.
func (s *XMLBuilderService) writeIssuer(gral *etree.Element, ctx *docContext) error {
	p := ctx.params
	body, dv, err := rules.SplitRUC("ruc", p.RUC)
	if err != nil {
		return err
	}
	g := gral.CreateElement("gEmis")
	addText(g, "dRucEm", body)
	addText(g, "dDVEmi", dv)
	addInt(g, "iTipCont", p.TipoContribuyente)
	addOptInt(g, "cTipReg", p.TipoRegimen)

	nombre := p.RazonSocial
	if ctx.opts.Test {
		nombre = sifen.TestIssuerName
	}
	addClean(g, "dNomEmi", nombre, maxNombre)
	addOptClean(g, "dNomFanEmi", p.NombreFantasia, maxNombre)

	est := p.EstablishmentByCode(ctx.data.Establecimiento.String())
	if est == nil {
		return &rules.AssemblyError{Field: "establecimientos", Reason: "no hay establecimientos"}
	}
	addClean(g, "dDirEmi", est.Direccion, maxDireccion)
	addClean(g, "dNumCas", defaultString(est.NumeroCasa, "0"), maxNumeroCasa)
	addOptClean(g, "dCompDir1", est.ComplementoDireccion1, maxDireccion)
	addOptClean(g, "dCompDir2", est.ComplementoDireccion2, maxDireccion)
	addOptInt(g, "cDepEmi", est.Departamento)
	addOptClean(g, "dDesDepEmi", est.DepartamentoDescripcion, maxNombre)
	addOptInt(g, "cDisEmi", est.Distrito)
	addOptClean(g, "dDesDisEmi", est.DistritoDescripcion, maxNombre)
	addOptInt(g, "cCiuEmi", est.Ciudad)
	addOptClean(g, "dDesCiuEmi", est.CiudadDescripcion, maxNombre)
	addOptClean(g, "dTelEmi", est.Telefono, maxTelefono)
	addOptClean(g, "dEmailE", est.Email, maxEmail)
	addOptClean(g, "dDenSuc", est.Denominacion, maxNombre)

	if len(p.ActividadesEconomicas) > 0 {
		act := g.CreateElement("gActEco")
		addText(act, "cActEco", p.ActividadesEconomicas[0].Codigo)
		addOptClean(act, "dDesActEco", p.ActividadesEconomicas[0].Descripcion, maxNombre)
	}
	return nil
}

// writeReceiver gDatRec: rama contribuyente (RUC + DV) o no contribuyente (tipo + número de documento).
func (s *XMLBuilderService) writeReceiver(gral *etree.Element, ctx *docContext) error {
	c := ctx.data.Cliente
	g := gral.CreateElement("gDatRec")
	naturaleza := sifen.NaturalezaNoContribuyente
	if c.Contribuyente {
		naturaleza = sifen.NaturalezaContribuyente
	}
	addInt(g, "iNatRec", naturaleza)

	tipoOpe := c.TipoOperacion
	if tipoOpe == 0 && ctx.opts.DefaultValues {
		tipoOpe = sifen.OperacionB2C
		if c.Contribuyente {
			tipoOpe = sifen.OperacionB2B
		}
	}
	addOptInt(g, "iTiOpe", tipoOpe)

	pais := strings.ToUpper(c.Pais)
	if pais == "" && ctx.opts.DefaultValues {
		pais = sifen.PaisParaguay
	}
	if pais != "" {
		addText(g, "cPaisRec", pais)
		if pais == sifen.PaisParaguay {
			addText(g, "dDesPaisRe", sifen.PaisParaguayDs)
		}
	}

	if c.Contribuyente {
		body, dv, err := rules.SplitRUC("cliente.ruc", c.RUC)
		if err != nil {
			return err
		}
		addText(g, "dRucRec", body)
		addText(g, "dDVRec", dv)
	} else {
		addInt(g, "iTipIDRec", c.DocumentoTipo)
		addText(g, "dDTipIDRec", sifen.IdentityDocumentTypes[c.DocumentoTipo])
		addClean(g, "dNumIDRec", c.DocumentoNumero, 20)
	}
	addClean(g, "dNomRec", c.RazonSocial, maxNombre)
	addOptClean(g, "dNomFanRec", c.NombreFantasia, maxNombre)

	if c.HasAddress() {
		addClean(g, "dDirRec", c.Direccion, maxDireccion)
		addClean(g, "dNumCasRec", defaultString(c.NumeroCasa, "0"), maxNumeroCasa)
		addOptInt(g, "cDepRec", c.Departamento)
		addOptClean(g, "dDesDepRec", c.DepartamentoDescripcion, maxNombre)
		addOptInt(g, "cCiuRec", c.Ciudad)
		addOptClean(g, "dDesCiuRec", c.CiudadDescripcion, maxNombre)
	}
	addOptClean(g, "dTelRec", c.Telefono, maxTelefono)
	addOptClean(g, "dEmailRec", c.Email, maxEmail)
	return nil
}

// writeCondition gCamCond: contado o crédito con plazo o lista de cuotas.
func (s *XMLBuilderService) writeCondition(dtip *etree.Element, ctx *docContext) error {
	cond := ctx.data.Condicion
	g := dtip.CreateElement("gCamCond")
	addInt(g, "iCondOpe", cond.Tipo)
	addText(g, "dDCondOpe", sifen.OperationConditions[cond.Tipo])
	if cond.Tipo != sifen.CondicionCredito || cond.Credito == nil {
		return nil
	}

	cred := g.CreateElement("gPagCred")
	addInt(cred, "iCondCred", cond.Credito.Tipo)
	addText(cred, "dDCondCred", sifen.CreditConditions[cond.Credito.Tipo])
	addOptClean(cred, "dPlazoCre", cond.Credito.Plazo, maxPlazo)
	if len(cond.Credito.Cuotas) > 0 {
		addInt(cred, "dCuotas", len(cond.Credito.Cuotas))
	}
	for i, q := range cond.Credito.Cuotas {
		moneda := strings.ToUpper(defaultString(q.Moneda, sifen.DefaultMoneda))
		monto, err := sifen.FormatAmount(q.Monto, ctx.opts.amountDecimals(moneda))
		if err != nil {
			return &rules.AssemblyError{Field: fmt.Sprintf("condicion.credito.cuotas[%d].monto", i), Reason: err.Error()}
		}
		cuota := cred.CreateElement("gCuotas")
		addText(cuota, "cMoneCuo", moneda)
		if moneda == sifen.DefaultMoneda {
			addText(cuota, "dDMoneCuo", sifen.MonedaDesc)
		}
		addText(cuota, "dMonCuota", monto)
		if q.Vencimiento != "" {
			venc, err := sifen.FormatDate(q.Vencimiento)
			if err != nil {
				return &rules.AssemblyError{Field: fmt.Sprintf("condicion.credito.cuotas[%d].vencimiento", i), Reason: err.Error()}
			}
			addText(cuota, "dVencCuo", venc)
		}
	}
	return nil
}

// writeItem gCamItem: código (o índice 1-based), descripción, cantidad, unidad, precio e IVA.
func (s *XMLBuilderService) writeItem(dtip *etree.Element, ctx *docContext, i int) error {
	it := &ctx.data.Items[i]
	a := rules.ComputeItem(it)
	amountDec := ctx.opts.amountDecimals(ctx.currency)

	g := dtip.CreateElement("gCamItem")
	codigo := it.Codigo
	if codigo == "" {
		codigo = strconv.Itoa(i + 1)
	}
	addClean(g, "dCodInt", codigo, maxCodigoItem)
	addClean(g, "dDesProSer", it.Descripcion, maxDescripcion)
	addText(g, "dCantProSer", trimDecimal(a.Quantity, 4))

	unidad := it.UnidadMedida
	if unidad == 0 && ctx.opts.DefaultValues {
		unidad = sifen.UnidadUnidad
	}
	if unidad != 0 {
		addInt(g, "cUniMed", unidad)
		addOptText(g, "dDesUniMed", sifen.MeasurementUnits[unidad])
	}
	addOptClean(g, "dInfItem", it.Observacion, 500)

	valor := g.CreateElement("gValorItem")
	addText(valor, "dPUniProSer", sifen.FormatDecimal(a.UnitPrice, amountDec))
	addText(valor, "dTotBruOpeItem", sifen.FormatDecimal(a.Total, amountDec))

	if it.IVA == nil {
		return nil
	}
	iva := g.CreateElement("gCamIVA")
	addInt(iva, "iAfecIVA", it.IVA.Tipo)
	addText(iva, "dDesAfecIVA", sifen.VATTypes[it.IVA.Tipo])
	if it.IVA.Tipo == sifen.IVAGravado {
		addInt(iva, "dPropIVA", proporcionGravada)
	}
	addText(iva, "dTasaIVA", trimDecimal(a.VATRate, 0))
	addText(iva, "dBasGravIVA", sifen.FormatDecimal(a.VATBase, ctx.opts.itemTaxDecimals(ctx.currency)))
	addText(iva, "dLiqIVAItem", sifen.FormatDecimal(a.VATAmount, ctx.opts.itemTaxDecimals(ctx.currency)))
	return nil
}

// writeTotals gTotSub.
func (s *XMLBuilderService) writeTotals(de *etree.Element, ctx *docContext) {
	t := ctx.totals
	amt := ctx.opts.amountDecimals(ctx.currency)
	tax := ctx.opts.totalTaxDecimals(ctx.currency)

	g := de.CreateElement("gTotSub")
	addText(g, "dSubExe", sifen.FormatDecimal(t.Exenta, amt))
	addText(g, "dSubExo", sifen.FormatDecimal(t.Exonerada, amt))
	addText(g, "dSub5", sifen.FormatDecimal(t.Gravada5, amt))
	addText(g, "dSub10", sifen.FormatDecimal(t.Gravada10, amt))
	addText(g, "dTotOpe", sifen.FormatDecimal(t.Operacion, amt))
	addText(g, "dTotDesc", sifen.FormatDecimal(decimal.Zero, amt))
	addText(g, "dTotGralOpe", sifen.FormatDecimal(t.General, amt))
	addText(g, "dIVA5", sifen.FormatDecimal(t.IVA5, tax))
	addText(g, "dIVA10", sifen.FormatDecimal(t.IVA10, tax))
	addText(g, "dTotIVA", sifen.FormatDecimal(t.IVA, tax))
	addText(g, "dBaseGrav5", sifen.FormatDecimal(t.BaseGrav5, tax))
	addText(g, "dBaseGrav10", sifen.FormatDecimal(t.BaseGrav10, tax))
	addText(g, "dTBasGraIVA", sifen.FormatDecimal(t.BaseGrav, tax))
}

// trimDecimal redondea a places decimales sin ceros a la derecha (2.5000 => 2.5).
func trimDecimal(d decimal.Decimal, places int32) string {
	return d.Round(places).String()
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
