package modulemd

import (
	"strings"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// Dependencies is one alternative set of module requirements of a V2
// stream. Each module maps to the streams it may be satisfied by; an empty
// set means any stream and a leading '-' excludes a stream.
type Dependencies struct {
	BuildtimeRequires map[string]StringSet
	RuntimeRequires   map[string]StringSet
}

func NewDependencies() *Dependencies {
	return &Dependencies{
		BuildtimeRequires: map[string]StringSet{},
		RuntimeRequires:   map[string]StringSet{},
	}
}

// AddBuildtimeStream adds stream to the build requirements of module.
func (d *Dependencies) AddBuildtimeStream(module string, stream string) {
	d.BuildtimeRequires = addToNestedSet(d.BuildtimeRequires, module, stream)
}

func (d *Dependencies) AddRuntimeStream(module string, stream string) {
	d.RuntimeRequires = addToNestedSet(d.RuntimeRequires, module, stream)
}

// SetEmptyBuildtimeDependenciesForModule requires module at any stream.
func (d *Dependencies) SetEmptyBuildtimeDependenciesForModule(module string) {
	d.BuildtimeRequires = addToNestedSet(d.BuildtimeRequires, module)
}

func (d *Dependencies) SetEmptyRuntimeDependenciesForModule(module string) {
	d.RuntimeRequires = addToNestedSet(d.RuntimeRequires, module)
}

func addToNestedSet(m map[string]StringSet, module string, streams ...string) map[string]StringSet {
	if m == nil {
		m = map[string]StringSet{}
	}
	set := m[module]
	set.Add(streams...)
	m[module] = set
	return m
}

func (d *Dependencies) Copy() *Dependencies {
	return &Dependencies{
		BuildtimeRequires: copyNestedSet(d.BuildtimeRequires),
		RuntimeRequires:   copyNestedSet(d.RuntimeRequires),
	}
}

func (d *Dependencies) Equals(other *Dependencies) bool {
	if d == nil || other == nil {
		return d == other
	}
	return nestedSetsEqual(d.BuildtimeRequires, other.BuildtimeRequires) &&
		nestedSetsEqual(d.RuntimeRequires, other.RuntimeRequires)
}

// RequiresModuleAndStream reports whether stream of module satisfies the
// runtime requirements.
func (d *Dependencies) RequiresModuleAndStream(module string, stream string) bool {
	return nestedSetAllows(d.RuntimeRequires, module, stream)
}

func (d *Dependencies) BuildrequiresModuleAndStream(module string, stream string) bool {
	return nestedSetAllows(d.BuildtimeRequires, module, stream)
}

func nestedSetAllows(m map[string]StringSet, module string, stream string) bool {
	set, ok := m[module]
	if !ok {
		return false
	}
	if set.IsEmpty() || set.Contains(stream) {
		return true
	}
	if set.Contains("-" + stream) {
		return false
	}
	// An exclusion-only list allows every stream it does not name.
	return strings.HasPrefix(set.Values()[0], "-")
}

func (d *Dependencies) Validate() error {
	if err := validateDependencySigns(d.RuntimeRequires, "Runtime"); err != nil {
		return err
	}
	return validateDependencySigns(d.BuildtimeRequires, "Buildtime")
}

func validateDependencySigns(m map[string]StringSet, kind string) error {
	for _, module := range utils.SortedKeys(m) {
		streams := m[module].Values()
		if len(streams) == 0 {
			continue
		}
		negative := strings.HasPrefix(streams[0], "-")
		for _, s := range streams[1:] {
			if strings.HasPrefix(s, "-") != negative {
				return ce.NewValidation("%s dependency %s contained a mix of positive and negative entries.", kind, module)
			}
		}
	}
	return nil
}

func parseDependencies(p *parser) (*Dependencies, error) {
	d := NewDependencies()
	err := p.mappingBody("dependencies", func(k events.Event) error {
		var err error
		switch k.Value {
		case "buildrequires":
			d.BuildtimeRequires, err = p.parseNestedSet("dependencies buildrequires")
		case "requires":
			d.RuntimeRequires, err = p.parseNestedSet("dependencies requires")
		default:
			err = p.skipUnknown(k, "dependencies")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dependencies) emit(e *emitter) {
	e.startMapping()
	if len(d.BuildtimeRequires) > 0 {
		e.nestedSet("buildrequires", d.BuildtimeRequires)
	}
	if len(d.RuntimeRequires) > 0 {
		e.nestedSet("requires", d.RuntimeRequires)
	}
	e.endMapping()
}
