package file_test

import (
	"testing"

	"github.com/aretw0/causal/internal/testutils"
	"github.com/aretw0/causal/pkg/adapters/file"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coinYAML = `
name: coin
objects: [Bool]
generators:
  - "observed: -> Bool"
  - "neg: Bool -> Bool"
`

const homYAML = `
source: ../theories/coin.yaml
target: ../theories/noisy.yml
objects: {Bool: Bool}
generators:
  observed: |
    def img():
        return threshold(noise())
  neg: |
    def img(x = Bool):
        return neg(x)
`

func TestReadHomomorphism(t *testing.T) {
	dir := testutils.TempTheories(t, map[string]string{
		"theories/coin.yaml": coinYAML,
		"theories/noisy.yml": noisyYAML,
		"maps/noise.yaml":    homYAML,
		"maps/partial.yaml":  "source: ../theories/coin.yaml\ntarget: ../theories/noisy.yml\nobjects: {Bool: Bool}\n",
		"maps/nosource.yaml": "target: ../theories/noisy.yml\n",
	})

	t.Run("Valid", func(t *testing.T) {
		h, err := file.ReadHomomorphism(dir + "/maps/noise.yaml")
		require.NoError(t, err)
		assert.Equal(t, "coin -> noisy", h.String())
		img, ok := h.Image("observed")
		require.True(t, ok)
		assert.Equal(t, "(noise ; threshold)", img.String())
	})

	t.Run("Missing Images", func(t *testing.T) {
		_, err := file.ReadHomomorphism(dir + "/maps/partial.yaml")
		require.ErrorIs(t, err, domain.ErrValidationFailure)
		assert.Len(t, domain.ValidationErrors(err), 2)
	})

	t.Run("Missing Source", func(t *testing.T) {
		_, err := file.ReadHomomorphism(dir + "/maps/nosource.yaml")
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := file.ReadHomomorphism(dir + "/maps/ghost.yaml")
		assert.ErrorIs(t, err, domain.ErrTheoryNotFound)
	})
}
