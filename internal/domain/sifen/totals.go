package sifen

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

var (
	hundred  = decimal.NewFromInt(100)
	rateFive = decimal.NewFromInt(5)
	rateTen  = decimal.NewFromInt(10)
)

// ItemAmounts montos calculados de una línea (sin redondear).
type ItemAmounts struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal // cantidad * precio unitario
	VATType   int             // 0 si la línea no informa IVA
	VATRate   decimal.Decimal
	VATBase   decimal.Decimal
	VATAmount decimal.Decimal // informado o base * tasa / 100
}

// ComputeItem calcula los montos de una línea ya validada.
func ComputeItem(it *entity.Item) ItemAmounts {
	a := ItemAmounts{
		Quantity:  amountOrZero(it.Cantidad),
		UnitPrice: amountOrZero(it.PrecioUnitario),
	}
	a.Total = a.Quantity.Mul(a.UnitPrice)
	if it.IVA == nil {
		return a
	}
	a.VATType = it.IVA.Tipo
	a.VATRate = amountOrZero(it.IVA.Porcentaje)
	a.VATBase = amountOrZero(it.IVA.Base)
	if it.IVA.Monto.IsZero() {
		a.VATAmount = a.VATBase.Mul(a.VATRate).Div(hundred)
	} else {
		a.VATAmount = amountOrZero(it.IVA.Monto)
	}
	return a
}

// Totals totales del documento (grupo gTotSub).
type Totals struct {
	Exenta     decimal.Decimal // dSubExe
	Exonerada  decimal.Decimal // dSubExo
	Gravada5   decimal.Decimal // dSub5
	Gravada10  decimal.Decimal // dSub10
	Operacion  decimal.Decimal // dTotOpe
	General    decimal.Decimal // dTotGralOpe
	IVA5       decimal.Decimal // dIVA5
	IVA10      decimal.Decimal // dIVA10
	IVA        decimal.Decimal // dTotIVA
	BaseGrav5  decimal.Decimal // dBaseGrav5
	BaseGrav10 decimal.Decimal // dBaseGrav10
	BaseGrav   decimal.Decimal // dTBasGraIVA
}

// ComputeTotals suma las líneas del documento. Las líneas sin IVA se consideran exentas.
func ComputeTotals(items []entity.Item) Totals {
	var t Totals
	for i := range items {
		a := ComputeItem(&items[i])
		t.Operacion = t.Operacion.Add(a.Total)
		switch a.VATType {
		case sifen.IVAGravado, sifen.IVAGravadoParcial:
			switch {
			case a.VATRate.Equal(rateFive):
				t.Gravada5 = t.Gravada5.Add(a.Total)
				t.IVA5 = t.IVA5.Add(a.VATAmount)
				t.BaseGrav5 = t.BaseGrav5.Add(a.VATBase)
			case a.VATRate.Equal(rateTen):
				t.Gravada10 = t.Gravada10.Add(a.Total)
				t.IVA10 = t.IVA10.Add(a.VATAmount)
				t.BaseGrav10 = t.BaseGrav10.Add(a.VATBase)
			default:
				t.Exenta = t.Exenta.Add(a.Total)
			}
		case sifen.IVAExonerado:
			t.Exonerada = t.Exonerada.Add(a.Total)
		default:
			t.Exenta = t.Exenta.Add(a.Total)
		}
	}
	t.General = t.Operacion
	t.IVA = t.IVA5.Add(t.IVA10)
	t.BaseGrav = t.BaseGrav5.Add(t.BaseGrav10)
	return t
}

func amountOrZero(a sifen.Amount) decimal.Decimal {
	if a.IsZero() {
		return decimal.Zero
	}
	d, err := a.Decimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}
