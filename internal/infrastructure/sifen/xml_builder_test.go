package sifen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

func TestBuildDE_EstructuraBasica(t *testing.T) {
	res, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.CDC, 44)

	assert.True(t, strings.HasPrefix(res.XML, `<?xml version="1.0" encoding="UTF-8"?>`))

	doc := parseXML(t, res.XML)
	root := doc.Root()
	assert.Equal(t, "rDE", root.Tag)
	assert.Equal(t, sifen.Namespace, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, sifen.NamespaceXSI, root.SelectAttrValue("xmlns:xsi", ""))
	assert.Equal(t, sifen.Namespace+" siRecepDE_v150.xsd", root.SelectAttrValue("xsi:schemaLocation", ""))

	assert.Equal(t, "150", text(doc, "rDE/dVerFor"))
	de := doc.FindElement("rDE/DE")
	require.NotNil(t, de)
	assert.Equal(t, res.CDC, de.SelectAttrValue("Id", ""))
	assert.Equal(t, res.CDC[43:], text(doc, "rDE/DE/dDVId"))
	assert.Equal(t, "2024-03-10T12:00:00", text(doc, "rDE/DE/dFecFirma"))
	assert.Equal(t, "1", text(doc, "rDE/DE/gOpeDE/iTipEmi"))
	assert.Equal(t, "759571469", text(doc, "rDE/DE/gOpeDE/dCodSeg"))
	assert.Equal(t, "2024-03-09T10:00:00", text(doc, "rDE/DE/gDatGralOpe/dFeEmiDE"))

	assert.Equal(t, "1", text(doc, "rDE/DE/gTimb/iTiDE"))
	assert.Equal(t, "12558946", text(doc, "rDE/DE/gTimb/dNumTim"))
	assert.Equal(t, "001", text(doc, "rDE/DE/gTimb/dEst"))
	assert.Equal(t, "001", text(doc, "rDE/DE/gTimb/dPunExp"))
	assert.Equal(t, "0000006", text(doc, "rDE/DE/gTimb/dNumDoc"))
}

func TestBuildDE_OrdenDeBloques(t *testing.T) {
	res, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)

	var tags []string
	for _, c := range doc.FindElement("rDE/DE").ChildElements() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"dDVId", "dFecFirma", "dSisFact", "gOpeDE", "gTimb", "gDatGralOpe", "gDtipDE", "gTotSub"}, tags)

	tags = nil
	for _, c := range doc.FindElement("rDE/DE/gDatGralOpe").ChildElements() {
		tags = append(tags, c.Tag)
	}
	assert.Equal(t, []string{"dFeEmiDE", "gOpeCom", "gEmis", "gDatRec"}, tags)
}

func TestBuildDE_EmisorConRUCSeparado(t *testing.T) {
	res, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)

	assert.Equal(t, "80069563", text(doc, "rDE/DE/gDatGralOpe/gEmis/dRucEm"))
	assert.Equal(t, "1", text(doc, "rDE/DE/gDatGralOpe/gEmis/dDVEmi"))
	assert.Equal(t, "Empresa de Prueba S.A.", text(doc, "rDE/DE/gDatGralOpe/gEmis/dNomEmi"))
	assert.Equal(t, "Prueba", text(doc, "rDE/DE/gDatGralOpe/gEmis/dNomFanEmi"))
	assert.Equal(t, "Av. Mcal. López", text(doc, "rDE/DE/gDatGralOpe/gEmis/dDirEmi"))
	assert.Equal(t, "62010", text(doc, "rDE/DE/gDatGralOpe/gEmis/gActEco/cActEco"))
	assert.Len(t, doc.FindElements("rDE/DE/gDatGralOpe/gEmis/gActEco"), 1, "solo la primera actividad")
}

func TestBuildDE_DireccionDelEstablecimientoEmisor(t *testing.T) {
	data := validData()
	data.Establecimiento = "2"
	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "Ruta 2 km 20", text(doc, "rDE/DE/gDatGralOpe/gEmis/dDirEmi"))
}

func TestBuildDE_ReceptorContribuyenteYNoContribuyente(t *testing.T) {
	res, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "1", text(doc, "rDE/DE/gDatGralOpe/gDatRec/iNatRec"))
	assert.Equal(t, "80000000", text(doc, "rDE/DE/gDatGralOpe/gDatRec/dRucRec"))
	assert.Equal(t, "5", text(doc, "rDE/DE/gDatGralOpe/gDatRec/dDVRec"))
	assert.Nil(t, doc.FindElement("rDE/DE/gDatGralOpe/gDatRec/dNumIDRec"))

	data := validData()
	data.Cliente = &entity.Client{
		DocumentoTipo:   1,
		DocumentoNumero: "1234567",
		RazonSocial:     "Juan Pérez",
		Direccion:       "Calle 1",
	}
	res, err = newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	doc = parseXML(t, res.XML)
	assert.Equal(t, "2", text(doc, "rDE/DE/gDatGralOpe/gDatRec/iNatRec"))
	assert.Equal(t, "1", text(doc, "rDE/DE/gDatGralOpe/gDatRec/iTipIDRec"))
	assert.Equal(t, "1234567", text(doc, "rDE/DE/gDatGralOpe/gDatRec/dNumIDRec"))
	assert.Equal(t, "Calle 1", text(doc, "rDE/DE/gDatGralOpe/gDatRec/dDirRec"))
	assert.Nil(t, doc.FindElement("rDE/DE/gDatGralOpe/gDatRec/dRucRec"))
}

func TestBuildDE_ItemsYTotales(t *testing.T) {
	data := validData()
	data.Items = append(data.Items, entity.Item{Descripcion: "Exento", Cantidad: "1.5", PrecioUnitario: "1000"})

	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)

	items := doc.FindElements("rDE/DE/gDtipDE/gCamItem")
	require.Len(t, items, 2)
	assert.Equal(t, "A-1", items[0].FindElement("dCodInt").Text())
	assert.Equal(t, "2", items[1].FindElement("dCodInt").Text(), "sin código se usa el índice 1-based")
	assert.Equal(t, "1.5", items[1].FindElement("dCantProSer").Text())
	assert.Equal(t, "77", items[0].FindElement("cUniMed").Text())
	assert.Equal(t, "55000", items[0].FindElement("gValorItem/dPUniProSer").Text())
	assert.Equal(t, "110000", items[0].FindElement("gValorItem/dTotBruOpeItem").Text())
	assert.Equal(t, "10", items[0].FindElement("gCamIVA/dTasaIVA").Text())
	assert.Equal(t, "10000", items[0].FindElement("gCamIVA/dLiqIVAItem").Text())
	assert.Nil(t, items[1].FindElement("gCamIVA"))

	assert.Equal(t, "111500", text(doc, "rDE/DE/gTotSub/dTotGralOpe"))
	assert.Equal(t, "10000", text(doc, "rDE/DE/gTotSub/dTotIVA"))
	assert.Equal(t, "1500", text(doc, "rDE/DE/gTotSub/dSubExe"))
	assert.True(t, res.Totals.General.Equal(res.Totals.Operacion))
}

func TestBuildDE_MonedaExtranjeraUsaDecimales(t *testing.T) {
	data := validData()
	data.Moneda = "USD"
	data.Items[0].PrecioUnitario = "10.5"
	data.Items[0].IVA.Base = "19.0909"

	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "USD", text(doc, "rDE/DE/gDatGralOpe/gOpeCom/cMoneOpe"))
	assert.Equal(t, "10.50", text(doc, "rDE/DE/gDtipDE/gCamItem/gValorItem/dPUniProSer"))
	assert.Equal(t, "1.90909000", text(doc, "rDE/DE/gDtipDE/gCamItem/gCamIVA/dLiqIVAItem"))
	assert.Equal(t, "1.91", text(doc, "rDE/DE/gTotSub/dTotIVA"))
}

func TestBuildDE_CondicionCreditoConCuotas(t *testing.T) {
	data := validData()
	data.Condicion = &entity.OperationCondition{
		Tipo: sifen.CondicionCredito,
		Credito: &entity.Credit{
			Tipo: sifen.CreditoCuota,
			Cuotas: []entity.Installment{
				{Monto: "55000", Vencimiento: "2024-04-09"},
				{Monto: "55000,4"},
			},
		},
	}
	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	doc := parseXML(t, res.XML)

	assert.Equal(t, "2", text(doc, "rDE/DE/gDtipDE/gCamCond/iCondOpe"))
	assert.Equal(t, "2", text(doc, "rDE/DE/gDtipDE/gCamCond/gPagCred/dCuotas"))
	cuotas := doc.FindElements("rDE/DE/gDtipDE/gCamCond/gPagCred/gCuotas")
	require.Len(t, cuotas, 2)
	assert.Equal(t, "PYG", cuotas[0].FindElement("cMoneCuo").Text())
	assert.Equal(t, "2024-04-09", cuotas[0].FindElement("dVencCuo").Text())
	assert.Equal(t, "55000", cuotas[1].FindElement("dMonCuota").Text())
	assert.Nil(t, cuotas[1].FindElement("dVencCuo"))
}

func TestBuildDE_ModoPrueba(t *testing.T) {
	opts := infra.DefaultOptions()
	opts.Test = true
	res, err := newXMLBuilder().Build(validParams(), validData(), opts)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, sifen.TestIssuerName, text(doc, "rDE/DE/gDatGralOpe/gEmis/dNomEmi"))
}

func TestBuildDE_SinValoresPorDefecto(t *testing.T) {
	opts := infra.DefaultOptions()
	opts.DefaultValues = false
	res, err := newXMLBuilder().Build(validParams(), validData(), opts)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Nil(t, doc.FindElement("rDE/DE/gDtipDE/gCamItem/cUniMed"))
	assert.Nil(t, doc.FindElement("rDE/DE/gDtipDE/gCamFE"))
	assert.Nil(t, doc.FindElement("rDE/DE/gDatGralOpe/gDatRec/cPaisRec"))
}

func TestBuildDE_UsaCDCInformado(t *testing.T) {
	data := validData()
	data.CDC = testCDC
	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, testCDC, res.CDC)
}

func TestBuildDE_EscapaTextoLibre(t *testing.T) {
	data := validData()
	data.Items[0].Descripcion = "Tornillos <M8> & tuercas\x01"
	res, err := newXMLBuilder().Build(validParams(), data, infra.DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, res.XML, "Tornillos &lt;M8&gt; &amp; tuercas</dDesProSer>")
	doc := parseXML(t, res.XML)
	assert.Equal(t, "Tornillos <M8> & tuercas", text(doc, "rDE/DE/gDtipDE/gCamItem/dDesProSer"))
}

func TestBuildDE_Determinista(t *testing.T) {
	a, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	b, err := newXMLBuilder().Build(validParams(), validData(), infra.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a.XML, b.XML)
	assert.Contains(t, a.XML, "\n  <dVerFor>150</dVerFor>\n", "indentación de 2 espacios")
}

func TestBuildDE_ValidacionFallaAntesDeArmar(t *testing.T) {
	params := validParams()
	params.RUC = "80069563"
	data := validData()
	data.Numero = ""

	opts := infra.DefaultOptions()
	opts.ErrorSeparator = " | "
	res, err := newXMLBuilder().Build(params, data, opts)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, rules.ErrValidation)
	assert.Equal(t, `ruc "80069563" con formato inválido, se espera dígitos-dígito | numero es obligatorio`, err.Error())
}

func TestBuildDE_LimiteDeErrores(t *testing.T) {
	opts := infra.DefaultOptions()
	opts.ErrorLimit = 2
	_, err := newXMLBuilder().Build(&entity.ContributorParams{}, validData(), opts)
	require.Error(t, err)
	assert.Equal(t, "ruc es obligatorio; razonSocial es obligatorio", err.Error())

	var ve *rules.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Greater(t, len(ve.Errors), 2, "la lista completa se conserva")
}
