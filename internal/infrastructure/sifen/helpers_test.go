package sifen_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

const testCDC = "01800695631001001000000612021112917595714694"

func newXMLBuilder() *infra.XMLBuilderService {
	clock := clockwork.NewFakeClockAt(testNow)
	return infra.NewXMLBuilderService(rules.NewValidator(clock), rules.NewCDCGeneratorService(), clock)
}

func newEventBuilder() *infra.EventBuilderService {
	clock := clockwork.NewFakeClockAt(testNow)
	return infra.NewEventBuilderService(rules.NewValidator(clock), clock)
}

func validParams() *entity.ContributorParams {
	return &entity.ContributorParams{
		RUC:               "80069563-1",
		RazonSocial:       "Empresa de Prueba S.A.",
		NombreFantasia:    "Prueba",
		TimbradoNumero:    "12558946",
		TimbradoFecha:     "2023-08-25",
		TipoContribuyente: sifen.ContribuyenteJuridica,
		TipoRegimen:       8,
		Establecimientos: []entity.Establishment{
			{
				Codigo:                  "001",
				Direccion:               "Av. Mcal. López",
				NumeroCasa:              "1234",
				Departamento:            1,
				DepartamentoDescripcion: "CAPITAL",
				Ciudad:                  1,
				CiudadDescripcion:       "ASUNCION (DISTRITO)",
			},
			{
				Codigo:     "002",
				Direccion:  "Ruta 2 km 20",
				NumeroCasa: "0",
			},
		},
		ActividadesEconomicas: []entity.EconomicActivity{
			{Codigo: "62010", Descripcion: "Actividades de programación informática"},
			{Codigo: "47190", Descripcion: "Otras actividades de venta"},
		},
	}
}

func validData() *entity.DocumentData {
	return &entity.DocumentData{
		TipoDocumento:            sifen.TipoFactura,
		Establecimiento:          "1",
		Punto:                    "1",
		Numero:                   "6",
		Fecha:                    "2024-03-09T10:00:00",
		CodigoSeguridadAleatorio: "759571469",
		Cliente: &entity.Client{
			Contribuyente: true,
			RUC:           "80000000-5",
			RazonSocial:   "Cliente S.R.L.",
		},
		Items: []entity.Item{
			{
				Codigo:         "A-1",
				Descripcion:    "Servicio de consultoría",
				Cantidad:       "2",
				PrecioUnitario: "55000",
				IVA:            &entity.ItemVAT{Tipo: sifen.IVAGravado, Porcentaje: "10", Base: "100000"},
			},
		},
	}
}

// parseXML lee el XML generado y falla el test si no está bien formado.
func parseXML(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(s), "el XML debe estar bien formado")
	require.NotNil(t, doc.Root())
	return doc
}

func text(doc *etree.Document, path string) string {
	e := doc.FindElement(path)
	if e == nil {
		return ""
	}
	return e.Text()
}
