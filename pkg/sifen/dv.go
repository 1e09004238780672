package sifen

// dvBaseMax es el multiplicador máximo del módulo 11 SIFEN; al superarlo vuelve a 2.
const dvBaseMax = 11

// CalculateDV calcula el dígito verificador módulo 11 de una cadena numérica.
// Recorre la cadena de derecha a izquierda con multiplicadores 2..11 (cíclicos).
// Resto 0 o 1 => 0; en otro caso 11 - resto. Los caracteres no numéricos se ignoran.
func CalculateDV(value string) int {
	k := 2
	total := 0
	for i := len(value) - 1; i >= 0; i-- {
		c := value[i]
		if c < '0' || c > '9' {
			continue
		}
		if k > dvBaseMax {
			k = 2
		}
		total += int(c-'0') * k
		k++
	}
	remainder := total % 11
	if remainder > 1 {
		return 11 - remainder
	}
	return 0
}
