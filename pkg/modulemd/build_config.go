package modulemd

import (
	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// MaxContextLength is the longest context a stream or build configuration
// may carry.
const MaxContextLength = 10

// BuildConfig is one build context of a packager document.
type BuildConfig struct {
	Context           string
	Platform          string
	BuildtimeRequires map[string]string
	RuntimeRequires   map[string]string
	Buildopts         *Buildopts
}

func NewBuildConfig() *BuildConfig {
	return &BuildConfig{
		BuildtimeRequires: map[string]string{},
		RuntimeRequires:   map[string]string{},
	}
}

func (b *BuildConfig) AddBuildtimeRequirement(module string, stream string) {
	if b.BuildtimeRequires == nil {
		b.BuildtimeRequires = map[string]string{}
	}
	b.BuildtimeRequires[module] = stream
}

func (b *BuildConfig) AddRuntimeRequirement(module string, stream string) {
	if b.RuntimeRequires == nil {
		b.RuntimeRequires = map[string]string{}
	}
	b.RuntimeRequires[module] = stream
}

func (b *BuildConfig) Copy() *BuildConfig {
	return &BuildConfig{
		Context:           b.Context,
		Platform:          b.Platform,
		BuildtimeRequires: copyStringMap(b.BuildtimeRequires),
		RuntimeRequires:   copyStringMap(b.RuntimeRequires),
		Buildopts:         b.Buildopts.Copy(),
	}
}

func (b *BuildConfig) Equals(other *BuildConfig) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Context == other.Context &&
		b.Platform == other.Platform &&
		stringMapsEqual(b.BuildtimeRequires, other.BuildtimeRequires) &&
		stringMapsEqual(b.RuntimeRequires, other.RuntimeRequires) &&
		b.Buildopts.Equals(other.Buildopts)
}

func (b *BuildConfig) Validate() error {
	if b.Context == "" {
		return ce.NewValidation("Empty context in BuildConfig")
	}
	if len(b.Context) > MaxContextLength {
		return ce.NewValidation("BuildConfig context exceeds maximum characters")
	}
	if !isAlphanumeric(b.Context) {
		return ce.NewValidation("Non-alphanumeric character in BuildConfig context")
	}
	if b.Platform == "" {
		return ce.NewValidation("Unset platform in BuildConfig")
	}
	return nil
}

// parseBuildConfig reads one configurations entry. The caller has already
// consumed its MappingStart.
func parseBuildConfig(p *parser) (*BuildConfig, error) {
	b := NewBuildConfig()
	err := p.mappingBody("build config", func(k events.Event) error {
		var err error
		switch k.Value {
		case "context":
			b.Context, err = p.parseString()
		case "platform":
			b.Platform, err = p.parseString()
		case "buildrequires":
			b.BuildtimeRequires, err = p.parseStringMap("build config buildrequires")
		case "requires":
			b.RuntimeRequires, err = p.parseStringMap("build config requires")
		case "buildopts":
			b.Buildopts, err = parseBuildopts(p)
		default:
			err = p.skipUnknown(k, "build config")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BuildConfig) emit(e *emitter) {
	e.startMapping()
	e.keyValue("context", b.Context)
	e.keyValue("platform", b.Platform)
	e.stringMapIfNonEmpty("buildrequires", b.BuildtimeRequires)
	e.stringMapIfNonEmpty("requires", b.RuntimeRequires)
	emitBuildoptsIfSet(e, b.Buildopts)
	e.endMapping()
}

func isAlphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func copyStringMap(m map[string]string) map[string]string {
	out := utils.CopyMap(m)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

func stringMapsEqual(a map[string]string, b map[string]string) bool {
	return utils.MapsEqual(a, b, func(x, y string) bool { return x == y })
}

func copyNestedSet(m map[string]StringSet) map[string]StringSet {
	out := make(map[string]StringSet, len(m))
	for k, v := range m {
		out[k] = v.Copy()
	}
	return out
}

func nestedSetsEqual(a map[string]StringSet, b map[string]StringSet) bool {
	return utils.MapsEqual(a, b, func(x, y StringSet) bool { return x.Equal(y) })
}
