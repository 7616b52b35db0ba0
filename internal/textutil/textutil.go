// Package textutil normaliza texto importado o digitado: recorta espacios,
// colapsa espacios internos, pasa a mayúsculas y elimina tildes/diacríticos,
// para que "José Pérez" y "JOSE  PEREZ" sean la misma persona.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize deja el texto en la forma canónica usada en toda la base:
// mayúsculas, un solo espacio entre palabras, sin marcas combinantes.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToUpper(s)

	// NFKD separa la letra de su tilde; Remove(Mn) borra la tilde suelta.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return s
}

// FullName arma "APELLIDO_PATERNO APELLIDO_MATERNO NOMBRES" omitiendo
// las partes vacías.
func FullName(apPaterno, apMaterno, nombres string) string {
	return joinNonEmpty(Normalize(apPaterno), Normalize(apMaterno), Normalize(nombres))
}

// CourseName arma "DESC_GRADO LETRA", p.ej. "5TO BASICO A".
func CourseName(grado, letra string) string {
	return joinNonEmpty(Normalize(grado), Normalize(letra))
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
