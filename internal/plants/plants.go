// Package plants resolves the many spellings the reports use for the
// same thermoelectric plant to one canonical name. The table was built
// manually from the accumulated dataset.
package plants

import "strings"

// Canonicas is the normalized list of generation plants of the SEN.
var Canonicas = []string{
	"Antonio Guiteras", // Matanzas
	"Felton",           // Holguín (Lidio Ramón Pérez)
	"Renté",            // Santiago de Cuba (Antonio Maceo)
	"Santa Cruz",       // Mayabeque (Ernesto Guevara)
	"Cienfuegos",       // Carlos Manuel de Céspedes
	"Mariel",           // Artemisa (Máximo Gómez)
	"Nuevitas",         // Camagüey (10 de Octubre)
	"Tallapiedra",
	"Otto Parellada",
	"Habana",
	"Energas Boca de Jaruco",
	"Energas Jaruco",
	"Energas Varadero",
	"Boca de Jaruco",
	"CTE Matanzas",
}

// variantes maps reported spellings to their canonical form. Keys are
// matched case-insensitively after prefix stripping.
var variantes = map[string]string{
	"antonio guiteras":                  "Antonio Guiteras",
	"guiteras":                          "Antonio Guiteras",
	"felton":                            "Felton",
	"felto":                             "Felton",
	"feltón":                            "Felton",
	"lidio ramón pérez":                 "Felton",
	"lidio ramón pérez (felton)":        "Felton",
	"lidio ramón pérez (holguín)":       "Felton",
	"renté":                             "Renté",
	"rente":                             "Renté",
	"antonio maceo":                     "Renté",
	"antonio maceo (renté)":             "Renté",
	"santa cruz":                        "Santa Cruz",
	"santa cruz del norte":              "Santa Cruz",
	"ernesto guevara":                   "Santa Cruz",
	"ernesto che guevara":               "Santa Cruz",
	"cienfuegos":                        "Cienfuegos",
	"carlos manuel de céspedes":         "Cienfuegos",
	"céspedes":                          "Cienfuegos",
	"mariel":                            "Mariel",
	"máximo gómez":                      "Mariel",
	"máximo gómez (mariel)":             "Mariel",
	"nuevitas":                          "Nuevitas",
	"10 de octubre":                     "Nuevitas",
	"diez de octubre":                   "Nuevitas",
	"tallapiedra":                       "Tallapiedra",
	"otto parellada":                    "Otto Parellada",
	"habana":                            "Habana",
	"energas boca de jaruco":            "Energas Boca de Jaruco",
	"energas jaruco":                    "Energas Jaruco",
	"energas varadero":                  "Energas Varadero",
	"boca de jaruco":                    "Boca de Jaruco",
	"matanzas":                          "CTE Matanzas",
}

// prefixes are the qualifiers the reports prepend to plant names.
var prefixes = []string{
	"central termoeléctrica (cte)",
	"central termoeléctrica",
	"termoeléctrica",
	"cte ete",
	"cte de",
	"cte",
}

// Canonical resolves a reported plant name to its canonical form.
// Returns false when the name is not recognized.
func Canonical(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}

	lowered := strings.ToLower(trimmed)
	if canonical, ok := variantes[lowered]; ok {
		return canonical, true
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(lowered, prefix+" ") {
			stripped := strings.TrimSpace(lowered[len(prefix):])
			stripped = strings.TrimRight(stripped, " 12") // unit suffixes like "Felton 1"
			if canonical, ok := variantes[strings.TrimSpace(stripped)]; ok {
				return canonical, true
			}
		}
	}

	return "", false
}
