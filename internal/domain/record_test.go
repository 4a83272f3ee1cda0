package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeepsSchemaComplete(t *testing.T) {
	t.Parallel()

	datos := Datos{
		"zonas_con_problemas": []any{"La Habana"},
		"prediccion":          map[string]any{"afectacion": 100.0},
		"comentario_extra":    "inventado",
	}

	normalized := datos.Normalize()

	require.Len(t, normalized, len(SchemaKeys))
	for _, key := range SchemaKeys {
		_, present := normalized[key]
		assert.True(t, present, "missing key %s", key)
	}

	_, leaked := normalized["comentario_extra"]
	assert.False(t, leaked, "unknown key must be stripped")

	assert.Equal(t, []any{"La Habana"}, normalized["zonas_con_problemas"])
	assert.Nil(t, normalized["impacto"])
	assert.Nil(t, normalized["paneles_solares"])
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	normalized := Datos{}.Normalize()

	require.Len(t, normalized, len(SchemaKeys))
	for _, key := range SchemaKeys {
		assert.Nil(t, normalized[key])
	}
}
