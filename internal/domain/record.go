package domain

// SchemaKeys is the fixed top-level key set of the extraction payload.
// Downstream consumers rely on every key being present (possibly null)
// and on no extra keys ever appearing.
var SchemaKeys = []string{
	"zonas_con_problemas",
	"fecha_reporte",
	"prediccion",
	"info_matutina",
	"plantas",
	"distribuida",
	"paneles_solares",
	"impacto",
}

// Datos holds one model-extracted grid report. Model output is
// untrusted text rather than a typed contract, so the nested shape
// stays an untyped document normalized against SchemaKeys.
type Datos map[string]any

// Normalize returns a copy restricted to SchemaKeys: unknown keys are
// stripped, missing keys are set to an explicit null.
func (d Datos) Normalize() Datos {
	out := make(Datos, len(SchemaKeys))
	for _, key := range SchemaKeys {
		if value, ok := d[key]; ok {
			out[key] = value
		} else {
			out[key] = nil
		}
	}
	return out
}

// Record is the structured result of one successful extraction, exactly
// as it is embedded in the persistent store. The link doubles as the
// global identity key for deduplication.
type Record struct {
	Link string `json:"enlace"`
	Date string `json:"fecha"`
	Data Datos  `json:"datos"`
}
