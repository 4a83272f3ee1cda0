package plants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Antonio Guiteras", "Antonio Guiteras", true},
		{"guiteras", "Antonio Guiteras", true},
		{"CTE Antonio Guiteras", "Antonio Guiteras", true},
		{"Central Termoeléctrica (CTE) Antonio Guiteras", "Antonio Guiteras", true},
		{"Termoeléctrica Felton 2", "Felton", true},
		{"Lidio Ramón Pérez (Felton)", "Felton", true},
		{"rente", "Renté", true},
		{"Antonio Maceo (Renté)", "Renté", true},
		{"Ernesto Che Guevara", "Santa Cruz", true},
		{"CTE de Cienfuegos", "Cienfuegos", true},
		{"Máximo Gómez (Mariel)", "Mariel", true},
		{"10 de Octubre", "Nuevitas", true},
		{"Energas Boca de Jaruco", "Energas Boca de Jaruco", true},
		{"  Felton  ", "Felton", true},
		{"", "", false},
		{"Planta Desconocida", "", false},
	}

	for _, tc := range cases {
		got, ok := Canonical(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
