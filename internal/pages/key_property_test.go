//go:build property

package pages

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestKeyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("slug round trips through Parse", prop.ForAll(
		func(i int) bool {
			k := All()[i]
			parsed, ok := Parse(k.String())
			return ok && parsed == k
		},
		gen.IntRange(0, len(All())-1),
	))

	properties.Property("unknown strings label as themselves", prop.ForAll(
		func(raw string) bool {
			if _, ok := Parse(raw); ok {
				return true
			}
			return LabelFor(raw) == raw
		},
		gen.AlphaString(),
	))

	properties.Property("unknown strings parse to the default key", prop.ForAll(
		func(raw string) bool {
			k, ok := Parse(raw)
			return ok || k == DefaultKey
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
