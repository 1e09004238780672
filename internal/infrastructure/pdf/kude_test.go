package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	rules "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

func buildXML(t *testing.T) *infra.BuildResult {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	b := infra.NewXMLBuilderService(rules.NewValidator(clock), rules.NewCDCGeneratorService(), clock)

	params := &entity.ContributorParams{
		RUC:               "80069563-1",
		RazonSocial:       "Empresa de Prueba S.A.",
		TimbradoNumero:    "12558946",
		TimbradoFecha:     "2023-08-25",
		TipoContribuyente: sifen.ContribuyenteJuridica,
		TipoRegimen:       8,
		Establecimientos:  []entity.Establishment{{Codigo: "001", Direccion: "Av. Mcal. López", Telefono: "021 555 000"}},
		ActividadesEconomicas: []entity.EconomicActivity{
			{Codigo: "62010", Descripcion: "Actividades de programación informática"},
		},
	}
	data := &entity.DocumentData{
		TipoDocumento:            sifen.TipoFactura,
		Establecimiento:          "1",
		Punto:                    "1",
		Numero:                   "6",
		Fecha:                    "2024-03-09T10:00:00",
		CodigoSeguridadAleatorio: "759571469",
		Cliente:                  &entity.Client{Contribuyente: true, RUC: "80000000-5", RazonSocial: "Cliente S.R.L."},
		Condicion:                &entity.OperationCondition{Tipo: sifen.CondicionContado},
		Items: []entity.Item{
			{
				Codigo: "A-1", Descripcion: "Servicio de consultoría", Cantidad: "2", PrecioUnitario: "550000",
				IVA: &entity.ItemVAT{Tipo: sifen.IVAGravado, Porcentaje: "10", Base: "1000000"},
			},
			{Descripcion: "Timbres", Cantidad: "1", PrecioUnitario: "1500"},
		},
	}
	res, err := b.Build(params, data, infra.DefaultOptions())
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura del XML
// ──────────────────────────────────────────────────────────────────────────────

func TestParseKuDE_CamposDelDE(t *testing.T) {
	res := buildXML(t)
	d, err := parseKuDE(res.XML)
	require.NoError(t, err)

	assert.Equal(t, "Factura electrónica", d.TipoDocumento)
	assert.Equal(t, "12558946", d.Timbrado)
	assert.Equal(t, "001-001-0000006", d.Numero)
	assert.Equal(t, "Empresa de Prueba S.A.", d.EmisorNombre)
	assert.Equal(t, "80069563-1", d.EmisorRUC)
	assert.Equal(t, "021 555 000", d.EmisorTelefono)
	assert.Equal(t, "Actividades de programación informática", d.Actividad)
	assert.Equal(t, "2024-03-09 10:00:00", d.FechaEmision)
	assert.Equal(t, "PYG", d.Moneda)
	assert.Equal(t, "Contado", d.Condicion)
	assert.Equal(t, "Cliente S.R.L.", d.ReceptorNombre)
	assert.Equal(t, "80000000-5", d.ReceptorID)

	require.Len(t, d.Items, 2)
	assert.Equal(t, "A-1", d.Items[0].Codigo)
	assert.Equal(t, "1100000", d.Items[0].Total)
	assert.Equal(t, "10", d.Items[0].Tasa)
	assert.Equal(t, "2", d.Items[1].Codigo, "sin código se usa el índice")
	assert.Empty(t, d.Items[1].Tasa)

	assert.Equal(t, "1101500", d.Total)
	assert.Equal(t, "100000", d.TotalIVA)
	assert.Equal(t, "1500", d.SubExenta)
}

func TestParseKuDE_XMLInvalido(t *testing.T) {
	_, err := parseKuDE("<rDE><DE>")
	assert.Error(t, err)

	_, err = parseKuDE("<rEvento><rEve/></rEvento>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Generación del PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateKuDE_ConYSinQR(t *testing.T) {
	res := buildXML(t)
	doc := &entity.Document{CDC: res.CDC, XML: res.XML}
	g := NewKuDEGenerator()

	pdf, err := g.GenerateKuDE(context.Background(), doc, "https://ekuatia.set.gov.py/consultas-test/qr?nVersion=150&Id="+res.CDC)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "debe comenzar con la cabecera PDF")

	pdf, err = g.GenerateKuDE(context.Background(), doc, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestGenerateKuDE_SinXML(t *testing.T) {
	_, err := NewKuDEGenerator().GenerateKuDE(context.Background(), &entity.Document{CDC: "1"}, "")
	assert.Error(t, err)

	_, err = NewKuDEGenerator().GenerateKuDE(context.Background(), nil, "")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de formato
// ──────────────────────────────────────────────────────────────────────────────

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"":         "0",
		"0":        "0",
		"1500":     "1.500",
		"1101500":  "1.101.500",
		"10.50":    "10,50",
		"-25000.5": "-25.000,5",
		"999":      "999",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(in), in)
	}
}

func TestGroupCDC(t *testing.T) {
	cdc := "01800695631001001000000612021112917595714694"
	got := groupCDC(cdc)
	assert.Equal(t, "0180 0695 6310 0100 1000 0006 1202 1112 9175 9571 4694", got)
}
