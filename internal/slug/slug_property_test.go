package slug

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1337)
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("normalize is idempotent", prop.ForAll(
		func(raw string) bool {
			once := Normalize(raw)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("normalized slugs have a single leading slash and no trailing slash", prop.ForAll(
		func(raw string) bool {
			normalized := Normalize(raw)
			if normalized == Root {
				return true
			}
			return strings.HasPrefix(normalized, "/") &&
				!strings.HasPrefix(normalized, "//") &&
				!strings.HasSuffix(normalized, "/") &&
				!strings.ContainsAny(normalized, "?#")
		},
		gen.AnyString(),
	))

	properties.Property("absolute url prefix and trailing slash do not change the slug", prop.ForAll(
		func(segments []string) bool {
			path := "/" + strings.Join(segments, "/")
			return Normalize("https://aex.design"+path+"/") == Normalize(path)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
