// Package pdf genera el KuDE (Kuatia Electrónico: representación gráfica del DE) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + RUC + actividad │ Timbrado + tipo + número │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OPERACIÓN: fecha, condición, moneda                         │
//	│  RECEPTOR: nombre + RUC/documento                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cód | Descripción | Cant | P.Unit | Tasa | Total     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: subtotales, total general, liquidación IVA         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: QR + CDC en grupos de 4 + leyenda de consulta          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
)

const consultaURL = "https://ekuatia.set.gov.py/consultas"

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 56, Blue: 147}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KuDEGenerator implementa billing.KuDEGenerator usando Maroto v2.
type KuDEGenerator struct{}

var _ billing.KuDEGenerator = (*KuDEGenerator)(nil)

// NewKuDEGenerator construye el generador.
func NewKuDEGenerator() *KuDEGenerator { return &KuDEGenerator{} }

// GenerateKuDE genera el PDF a partir del XML guardado. qrURL vacío => el KuDE sale sin QR.
func (g *KuDEGenerator) GenerateKuDE(_ context.Context, doc *entity.Document, qrURL string) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("kude: documento nil")
	}
	data, err := parseKuDE(doc.XML)
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("KuDE "+doc.CDC, true).
		WithAuthor(data.EmisorNombre, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(operationRow(data))
	m.AddRows(receiverRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(data)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc.CDC, qrURL)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("kude: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y timbrado + tipo de documento + número (der).
func headerRow(d *kudeData) core.Row {
	return row.New(24).Add(
		col.New(7).Add(
			text.New(d.EmisorNombre, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+d.EmisorRUC, props.Text{Size: 9, Top: 8}),
			text.New(nonEmpty(d.Actividad, ""), props.Text{Size: 7, Top: 13, Color: colorGray}),
			text.New(fmt.Sprintf("%s   |   Tel: %s   |   %s",
				d.EmisorDireccion,
				nonEmpty(d.EmisorTelefono, "-"),
				nonEmpty(d.EmisorEmail, "-"),
			), props.Text{Size: 7, Top: 18, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Timbrado N° "+d.Timbrado, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Inicio de vigencia: "+d.InicioVigenc, props.Text{
				Size: 7, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New(strings.ToUpper(d.TipoDocumento), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 11,
			}),
			text.New(d.Numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 16,
			}),
		),
	)
}

// operationRow: fecha de emisión, condición y moneda.
func operationRow(d *kudeData) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Fecha de emisión: %s   |   Condición de venta: %s   |   Moneda: %s",
				d.FechaEmision,
				nonEmpty(d.Condicion, "-"),
				nonEmpty(d.Moneda, "PYG"),
			), props.Text{Size: 8, Top: 2}),
		),
	)
}

// receiverRow: datos del receptor.
func receiverRow(d *kudeData) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(d.ReceptorNombre, "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RUC / Documento: %s   |   Email: %s",
				nonEmpty(d.ReceptorID, "-"),
				nonEmpty(d.ReceptorEmail, "-"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cód.", 1, align.Left),
		h("Descripción", 5, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por gCamItem.
func tableItemRows(d *kudeData) []core.Row {
	rows := make([]core.Row, 0, len(d.Items))
	for _, it := range d.Items {
		tasa := "Exenta"
		if it.Tasa != "" && it.Tasa != "0" {
			tasa = it.Tasa + "%"
		}
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(it.Codigo, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(it.Descripcion, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(formatAmount(it.Cantidad), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatAmount(it.Precio), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(tasa, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatAmount(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// totalsRow: subtotales y liquidación del IVA.
func totalsRow(d *kudeData) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(formatAmount(s), props.Text{Size: 8, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top})
	}

	return row.New(30).Add(
		col.New(3).Add(
			label("Exentas:", 1), label("Gravadas 5%:", 6), label("Gravadas 10%:", 11),
		),
		col.New(3).Add(
			value(d.SubExenta, 1), value(d.Sub5, 6), value(d.Sub10, 11),
		),
		col.New(3).Add(
			label("IVA 5%:", 1), label("IVA 10%:", 6), label("Total IVA:", 11), grand("TOTAL:", 18),
		),
		col.New(3).Add(
			value(d.IVA5, 1), value(d.IVA10, 6), value(d.TotalIVA, 11), grand(formatAmount(d.Total), 18),
		),
	)
}

// footerRows: QR + CDC + leyenda de consulta.
func footerRows(cdc, qrURL string) []core.Row {
	leyenda := []core.Component{
		text.New("Consulte la validez de este Documento Electrónico con el número de CDC impreso abajo en:", props.Text{
			Size: 7, Top: 4, Left: 3, Color: colorGray,
		}),
		text.New(consultaURL, props.Text{Size: 7, Top: 9, Left: 3, Color: colorPrimary}),
		text.New("CDC: "+groupCDC(cdc), props.Text{Style: fontstyle.Bold, Size: 10, Top: 16, Left: 3}),
		text.New("ESTE DOCUMENTO ES UNA REPRESENTACIÓN GRÁFICA DE UN DOCUMENTO ELECTRÓNICO (XML)", props.Text{
			Style: fontstyle.Bold, Size: 7, Top: 26, Left: 3,
		}),
	}
	if qrURL == "" {
		return []core.Row{row.New(34).Add(col.New(12).Add(leyenda...))}
	}
	return []core.Row{
		row.New(45).Add(
			col.New(3).Add(code.NewQr(qrURL, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(leyenda...),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount separa miles con punto y decimales con coma: "1100000.5" => "1.100.000,5".
func formatAmount(s string) string {
	if s == "" {
		return "0"
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if hasFrac {
		out += "," + frac
	}
	return out
}

// groupCDC imprime el CDC en grupos de 4 dígitos.
func groupCDC(cdc string) string {
	return strings.Join(splitEvery(cdc, 4), " ")
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
