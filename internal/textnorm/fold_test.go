package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "informacion", Fold("Información"))
	assert.Equal(t, "cuando paso", Fold("CUÁNDO PASÓ"))
	assert.Equal(t, "nino", Fold("niño"))
	assert.Equal(t, "", Fold(""))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("No he encontrado INFORMACIÓN específica", "informacion especifica"))
	assert.False(t, Contains("texto cualquiera", "colisión"))
}

func TestHasAny(t *testing.T) {
	markers := []string{"qué fue exactamente", "podrías contarme"}
	assert.True(t, HasAny("¿Podrias contarme un poco más?", markers))
	assert.False(t, HasAny("Puedes leer más en:", markers))
}
