package sifen

import (
	"regexp"
	"strings"
)

var (
	rucPattern    = regexp.MustCompile(`^\d+-\d+$`)
	code3Pattern  = regexp.MustCompile(`^\d{1,3}$`)
	code7Pattern  = regexp.MustCompile(`^\d{1,7}$`)
	codSegPattern = regexp.MustCompile(`^\d{1,9}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// ValidRUC indica si ruc tiene la forma dígitos-dígito (ej: 80069563-1).
// El dígito verificador no se recalcula.
func ValidRUC(ruc string) bool {
	return rucPattern.MatchString(strings.TrimSpace(ruc))
}

// SplitRUC separa cuerpo y dígito verificador. field identifica el dato en el AssemblyError.
func SplitRUC(field, ruc string) (body, dv string, err error) {
	r := strings.TrimSpace(ruc)
	i := strings.LastIndex(r, "-")
	if i <= 0 || i == len(r)-1 {
		return "", "", &AssemblyError{Field: field, Reason: "RUC sin separador '-' entre cuerpo y dígito verificador"}
	}
	body, dv = r[:i], r[i+1:]
	if !digitsPattern.MatchString(body) || !digitsPattern.MatchString(dv) {
		return "", "", &AssemblyError{Field: field, Reason: "RUC con caracteres no numéricos"}
	}
	return body, dv, nil
}
