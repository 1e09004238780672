package sifen

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Anchos de cada campo del CDC, en el orden de concatenación.
const (
	widthTipoDocumento = 2
	widthRUC           = 8
	widthEstablec      = 3
	widthPunto         = 3
	widthNumero        = 7
	widthCodSeg        = 9
)

// Posición del código de seguridad dentro del CDC.
const (
	codSegStart = 34
	codSegEnd   = codSegStart + widthCodSeg
)

// maxCodSeg código de seguridad máximo (9 dígitos).
const maxCodSeg = 999_999_999

// CDCGeneratorService genera el CDC (Código de Control) de 44 dígitos.
// Orden: tipoDocumento(2) + RUC(8) + DV RUC(1) + establecimiento(3) + punto(3) + número(7)
// + tipoContribuyente(1) + fecha AAAAMMDD(8) + tipoEmisión(1) + código de seguridad(9) + DV(1).
type CDCGeneratorService struct {
	randN func(n int64) int64
}

// NewCDCGeneratorService crea el servicio con la fuente aleatoria de math/rand/v2.
func NewCDCGeneratorService() *CDCGeneratorService {
	return &CDCGeneratorService{randN: rand.Int64N}
}

// NewCDCGeneratorServiceWithRand permite fijar la fuente aleatoria (tests). randN(n) debe devolver [0, n).
func NewCDCGeneratorServiceWithRand(randN func(n int64) int64) *CDCGeneratorService {
	if randN == nil {
		randN = rand.Int64N
	}
	return &CDCGeneratorService{randN: randN}
}

// Generate arma el CDC a partir de los parámetros del contribuyente y los datos del documento.
// Los datos faltantes o mal formados devuelven *ValidationError antes de producir el código.
func (s *CDCGeneratorService) Generate(params *entity.ContributorParams, data *entity.DocumentData) (string, error) {
	var errs errList
	var rucBody, rucDV string

	switch {
	case params == nil || strings.TrimSpace(params.RUC) == "":
		errs.add("ruc es obligatorio para generar el CDC")
	case !ValidRUC(params.RUC):
		errs.add("ruc %q con formato inválido, se espera dígitos-dígito", params.RUC)
	default:
		rucBody, rucDV, _ = SplitRUC("ruc", params.RUC)
		if len(rucBody) > widthRUC {
			errs.add("ruc: el cuerpo no puede superar %d dígitos", widthRUC)
		}
		if len(rucDV) != 1 {
			errs.add("ruc: el dígito verificador debe ser un único dígito")
		}
	}
	if data == nil {
		errs.add("datos del documento son obligatorios para generar el CDC")
		return "", NewValidationError(errs, "", 0)
	}

	tipoOK := errs.required("tipoDocumento", data.TipoDocumento != 0)
	est := strings.TrimSpace(data.Establecimiento.String())
	punto := strings.TrimSpace(data.Punto.String())
	numero := strings.TrimSpace(data.Numero.String())
	estOK := errs.required("establecimiento", est != "")
	puntoOK := errs.required("punto", punto != "")
	numOK := errs.required("numero", numero != "")
	fechaOK := errs.required("fecha", strings.TrimSpace(data.Fecha) != "")

	if tipoOK {
		if _, ok := sifen.DocumentTypes[data.TipoDocumento]; !ok {
			errs.add("tipoDocumento %d no es válido (1..8)", data.TipoDocumento)
		}
	}
	if estOK && !code3Pattern.MatchString(est) {
		errs.add("establecimiento debe tener entre 1 y 3 dígitos")
	}
	if puntoOK && !code3Pattern.MatchString(punto) {
		errs.add("punto debe tener entre 1 y 3 dígitos")
	}
	if numOK && !code7Pattern.MatchString(numero) {
		errs.add("numero debe tener entre 1 y 7 dígitos")
	}
	tipoEmision := data.EmissionType()
	if tipoEmision < 0 || tipoEmision > 9 {
		errs.add("tipoEmision %d no es válido", tipoEmision)
	}
	tipoContribuyente := sifen.ContribuyenteFisica
	if params != nil && params.TipoContribuyente != 0 {
		tipoContribuyente = params.TipoContribuyente
	}
	if tipoContribuyente < 0 || tipoContribuyente > 9 {
		errs.add("tipoContribuyente %d no es válido", tipoContribuyente)
	}

	var fecha string
	if fechaOK {
		t, err := sifen.ParseDateTime(data.Fecha)
		if err != nil {
			errs.add("fecha %q no es una fecha válida", data.Fecha)
		} else {
			fecha = t.Format(sifen.LayoutCDCDate)
		}
	}

	codSeg, err := s.SecurityCode(data)
	if err != nil {
		errs.add("%s", err.Error())
	}
	if len(errs) > 0 {
		return "", NewValidationError(errs, "", 0)
	}

	var b strings.Builder
	b.Grow(CDCLength)
	b.WriteString(sifen.FormatCode(strconv.Itoa(data.TipoDocumento), widthTipoDocumento))
	b.WriteString(sifen.FormatCode(rucBody, widthRUC))
	b.WriteString(rucDV)
	b.WriteString(sifen.FormatCode(est, widthEstablec))
	b.WriteString(sifen.FormatCode(punto, widthPunto))
	b.WriteString(sifen.FormatCode(numero, widthNumero))
	b.WriteString(strconv.Itoa(tipoContribuyente))
	b.WriteString(fecha)
	b.WriteString(strconv.Itoa(tipoEmision))
	b.WriteString(codSeg)

	base := b.String()
	return base + strconv.Itoa(sifen.CalculateDV(base)), nil
}

// SecurityCode devuelve el código de seguridad de 9 dígitos: el informado por el llamador
// (rellenado con ceros) o uno aleatorio uniforme en [1, 999999999].
func (s *CDCGeneratorService) SecurityCode(data *entity.DocumentData) (string, error) {
	if data != nil {
		if c := strings.TrimSpace(data.CodigoSeguridadAleatorio.String()); c != "" {
			if !codSegPattern.MatchString(c) {
				return "", &AssemblyError{Field: "codigoSeguridadAleatorio", Reason: "debe tener entre 1 y 9 dígitos"}
			}
			return sifen.FormatCode(c, widthCodSeg), nil
		}
	}
	n := s.randN(maxCodSeg) + 1
	return sifen.FormatCode(strconv.FormatInt(n, 10), widthCodSeg), nil
}

// SecurityCodeOf extrae el código de seguridad (dCodSeg) de un CDC válido.
func SecurityCodeOf(cdc string) string {
	if len(cdc) != CDCLength {
		return ""
	}
	return cdc[codSegStart:codSegEnd]
}

// CheckDigitOf devuelve el dígito verificador del CDC (dDVId).
func CheckDigitOf(cdc string) string {
	if len(cdc) != CDCLength {
		return ""
	}
	return cdc[CDCLength-1:]
}
