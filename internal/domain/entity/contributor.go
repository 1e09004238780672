package entity

import "github.com/jhoicas/sifen-api/pkg/sifen"

// ContributorParams datos estáticos del emisor (contribuyente) que acompañan a cada DE.
type ContributorParams struct {
	RUC                   string             `json:"ruc" yaml:"ruc"` // 80069563-1
	RazonSocial           string             `json:"razonSocial" yaml:"razonSocial"`
	NombreFantasia        string             `json:"nombreFantasia,omitempty" yaml:"nombreFantasia"`
	TimbradoNumero        sifen.Code         `json:"timbradoNumero" yaml:"timbradoNumero"`
	TimbradoFecha         string             `json:"timbradoFecha" yaml:"timbradoFecha"` // inicio de vigencia
	TipoContribuyente     int                `json:"tipoContribuyente" yaml:"tipoContribuyente"`
	TipoRegimen           int                `json:"tipoRegimen" yaml:"tipoRegimen"`
	Version               int                `json:"version,omitempty" yaml:"version"` // 0 = sifen.SchemaVersion
	Establecimientos      []Establishment    `json:"establecimientos" yaml:"establecimientos"`
	ActividadesEconomicas []EconomicActivity `json:"actividadesEconomicas" yaml:"actividadesEconomicas"`
}

// Establishment local del emisor habilitado para emitir.
type Establishment struct {
	Codigo                  sifen.Code `json:"codigo" yaml:"codigo"`
	Denominacion            string     `json:"denominacion,omitempty" yaml:"denominacion"`
	Direccion               string     `json:"direccion" yaml:"direccion"`
	NumeroCasa              string     `json:"numeroCasa" yaml:"numeroCasa"`
	ComplementoDireccion1   string     `json:"complementoDireccion1,omitempty" yaml:"complementoDireccion1"`
	ComplementoDireccion2   string     `json:"complementoDireccion2,omitempty" yaml:"complementoDireccion2"`
	Departamento            int        `json:"departamento" yaml:"departamento"`
	DepartamentoDescripcion string     `json:"departamentoDescripcion" yaml:"departamentoDescripcion"`
	Distrito                int        `json:"distrito,omitempty" yaml:"distrito"`
	DistritoDescripcion     string     `json:"distritoDescripcion,omitempty" yaml:"distritoDescripcion"`
	Ciudad                  int        `json:"ciudad" yaml:"ciudad"`
	CiudadDescripcion       string     `json:"ciudadDescripcion" yaml:"ciudadDescripcion"`
	Telefono                string     `json:"telefono,omitempty" yaml:"telefono"`
	Email                   string     `json:"email,omitempty" yaml:"email"`
}

// EconomicActivity actividad económica registrada ante la SET.
type EconomicActivity struct {
	Codigo      string `json:"codigo" yaml:"codigo"`
	Descripcion string `json:"descripcion" yaml:"descripcion"`
}

// SchemaVersion versión del formato declarada por el contribuyente (150 por defecto).
func (p *ContributorParams) SchemaVersion() int {
	if p == nil || p.Version == 0 {
		return sifen.SchemaVersion
	}
	return p.Version
}

// EstablishmentByCode busca el establecimiento por código (comparando sin ceros a la izquierda);
// si no existe devuelve el primero. nil si la lista está vacía.
func (p *ContributorParams) EstablishmentByCode(code string) *Establishment {
	if p == nil || len(p.Establecimientos) == 0 {
		return nil
	}
	want := sifen.FormatCode(code, 3)
	for i := range p.Establecimientos {
		if sifen.FormatCode(p.Establecimientos[i].Codigo.String(), 3) == want {
			return &p.Establecimientos[i]
		}
	}
	return &p.Establecimientos[0]
}
