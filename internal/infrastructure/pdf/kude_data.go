package pdf

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// kudeData campos del rDE que se imprimen en el KuDE.
type kudeData struct {
	TipoDocumento string // dDesTiDE
	Timbrado      string
	InicioVigenc  string
	Numero        string // 001-001-0000001

	EmisorNombre    string
	EmisorRUC       string
	EmisorDireccion string
	EmisorTelefono  string
	EmisorEmail     string
	Actividad       string

	FechaEmision string
	Moneda       string
	Condicion    string

	ReceptorNombre string
	ReceptorID     string // RUC con DV o número de documento
	ReceptorEmail  string

	Items []kudeItem

	SubExenta string
	Sub5      string
	Sub10     string
	Total     string
	IVA5      string
	IVA10     string
	TotalIVA  string
}

type kudeItem struct {
	Codigo      string
	Descripcion string
	Cantidad    string
	Precio      string
	Tasa        string
	Total       string
}

// parseKuDE lee el XML del DE (firmado o no).
func parseKuDE(xmlText string) (*kudeData, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, fmt.Errorf("kude: leer xml: %w", err)
	}
	de := doc.FindElement("//DE")
	if de == nil {
		return nil, fmt.Errorf("kude: el xml no contiene el nodo DE")
	}
	get := func(path string) string {
		if e := de.FindElement(path); e != nil {
			return strings.TrimSpace(e.Text())
		}
		return ""
	}

	d := &kudeData{
		TipoDocumento: get("gTimb/dDesTiDE"),
		Timbrado:      get("gTimb/dNumTim"),
		InicioVigenc:  get("gTimb/dFeIniT"),
		Numero:        strings.Join([]string{get("gTimb/dEst"), get("gTimb/dPunExp"), get("gTimb/dNumDoc")}, "-"),

		EmisorNombre:    get("gDatGralOpe/gEmis/dNomEmi"),
		EmisorRUC:       joinRUC(get("gDatGralOpe/gEmis/dRucEm"), get("gDatGralOpe/gEmis/dDVEmi")),
		EmisorDireccion: get("gDatGralOpe/gEmis/dDirEmi"),
		EmisorTelefono:  get("gDatGralOpe/gEmis/dTelEmi"),
		EmisorEmail:     get("gDatGralOpe/gEmis/dEmailE"),
		Actividad:       get("gDatGralOpe/gEmis/gActEco/dDesActEco"),

		FechaEmision: strings.Replace(get("gDatGralOpe/dFeEmiDE"), "T", " ", 1),
		Moneda:       get("gDatGralOpe/gOpeCom/cMoneOpe"),
		Condicion:    get("gDtipDE/gCamCond/dDCondOpe"),

		ReceptorNombre: get("gDatGralOpe/gDatRec/dNomRec"),
		ReceptorEmail:  get("gDatGralOpe/gDatRec/dEmailRec"),

		SubExenta: get("gTotSub/dSubExe"),
		Sub5:      get("gTotSub/dSub5"),
		Sub10:     get("gTotSub/dSub10"),
		Total:     get("gTotSub/dTotGralOpe"),
		IVA5:      get("gTotSub/dIVA5"),
		IVA10:     get("gTotSub/dIVA10"),
		TotalIVA:  get("gTotSub/dTotIVA"),
	}
	if ruc := get("gDatGralOpe/gDatRec/dRucRec"); ruc != "" {
		d.ReceptorID = joinRUC(ruc, get("gDatGralOpe/gDatRec/dDVRec"))
	} else {
		d.ReceptorID = get("gDatGralOpe/gDatRec/dNumIDRec")
	}

	for _, it := range de.FindElements("gDtipDE/gCamItem") {
		text := func(path string) string {
			if e := it.FindElement(path); e != nil {
				return strings.TrimSpace(e.Text())
			}
			return ""
		}
		d.Items = append(d.Items, kudeItem{
			Codigo:      text("dCodInt"),
			Descripcion: text("dDesProSer"),
			Cantidad:    text("dCantProSer"),
			Precio:      text("gValorItem/dPUniProSer"),
			Tasa:        text("gCamIVA/dTasaIVA"),
			Total:       text("gValorItem/dTotBruOpeItem"),
		})
	}
	return d, nil
}

func joinRUC(body, dv string) string {
	if dv == "" {
		return body
	}
	return body + "-" + dv
}
