package modulemd

import (
	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// ModuleStreamV3 is a fully resolved stream with exactly one stream per
// dependency.
type ModuleStreamV3 struct {
	streamBase

	Platform          string
	BuildtimeRequires map[string]string
	RuntimeRequires   map[string]string
	RpmArtifactMap    RpmMap

	obsoletes *Obsoletes
}

func NewModuleStreamV3(module string, stream string) *ModuleStreamV3 {
	return &ModuleStreamV3{
		streamBase:        newStreamBase(module, stream),
		BuildtimeRequires: map[string]string{},
		RuntimeRequires:   map[string]string{},
		RpmArtifactMap:    RpmMap{},
	}
}

func (s *ModuleStreamV3) MdVersion() uint64 {
	return 3
}

func (s *ModuleStreamV3) AddBuildtimeRequirement(module string, stream string) {
	if s.BuildtimeRequires == nil {
		s.BuildtimeRequires = map[string]string{}
	}
	s.BuildtimeRequires[module] = stream
}

func (s *ModuleStreamV3) AddRuntimeRequirement(module string, stream string) {
	if s.RuntimeRequires == nil {
		s.RuntimeRequires = map[string]string{}
	}
	s.RuntimeRequires[module] = stream
}

func (s *ModuleStreamV3) AssociateObsoletes(o *Obsoletes) {
	s.obsoletes = o
}

func (s *ModuleStreamV3) Obsoletes() *Obsoletes {
	return resolvedObsoletes(s.obsoletes)
}

func (s *ModuleStreamV3) DependsOnStream(module string, stream string) bool {
	required, ok := s.RuntimeRequires[module]
	return ok && required == stream
}

func (s *ModuleStreamV3) BuildDependsOnStream(module string, stream string) bool {
	required, ok := s.BuildtimeRequires[module]
	return ok && required == stream
}

func (s *ModuleStreamV3) Copy() *ModuleStreamV3 {
	return &ModuleStreamV3{
		streamBase:        s.copyBase(),
		Platform:          s.Platform,
		BuildtimeRequires: copyStringMap(s.BuildtimeRequires),
		RuntimeRequires:   copyStringMap(s.RuntimeRequires),
		RpmArtifactMap:    s.RpmArtifactMap.Copy(),
		obsoletes:         s.obsoletes,
	}
}

func (s *ModuleStreamV3) Equals(other *ModuleStreamV3) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.equalsBase(&other.streamBase) &&
		s.Platform == other.Platform &&
		stringMapsEqual(s.BuildtimeRequires, other.BuildtimeRequires) &&
		stringMapsEqual(s.RuntimeRequires, other.RuntimeRequires) &&
		s.RpmArtifactMap.Equals(other.RpmArtifactMap) &&
		s.Obsoletes().Equals(other.Obsoletes())
}

func (s *ModuleStreamV3) Validate() error {
	if s.Context != "" {
		if err := ValidateStreamContext(s.Context); err != nil {
			return err
		}
	}
	if err := s.validateBase(); err != nil {
		return err
	}
	if s.Platform == "" {
		return ce.NewMissingRequired("Platform is missing")
	}
	return nil
}

func parseModuleStreamV3(p *parser) (*ModuleStreamV3, error) {
	s := NewModuleStreamV3("", "")
	err := p.mapping("ModuleStreamV3", func(key events.Event) error {
		handled, err := s.parseBaseKey(p, key, true)
		if handled {
			return err
		}
		switch key.Value {
		case "dependencies":
			return s.parseDependencies(p)
		case "artifacts":
			return s.parseArtifacts(p, &s.RpmArtifactMap)
		}
		return p.skipUnknown(key, "ModuleStreamV3")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ModuleStreamV3) parseDependencies(p *parser) error {
	return p.mapping("dependencies", func(k events.Event) error {
		var err error
		switch k.Value {
		case "platform":
			s.Platform, err = p.parseString()
		case "buildrequires":
			s.BuildtimeRequires, err = parseSingleStreamTable(p, k)
		case "requires":
			s.RuntimeRequires, err = parseSingleStreamTable(p, k)
		default:
			err = p.skipUnknown(k, "dependencies")
		}
		return err
	})
}

// parseSingleStreamTable reads module: [stream] pairs, rejecting any entry
// that lists other than one stream.
func parseSingleStreamTable(p *parser, key events.Event) (map[string]string, error) {
	nested, err := p.parseNestedSet("dependencies " + key.Value)
	if err != nil {
		return nil, err
	}
	table := make(map[string]string, len(nested))
	for _, module := range utils.SortedKeys(nested) {
		streams := nested[module].Values()
		if len(streams) != 1 {
			return nil, malformed(key, "ModuleStreamV3 dependency %s must specify a single stream", module)
		}
		table[module] = streams[0]
	}
	return table, nil
}

func emitSingleStreamTable(e *emitter, key string, table map[string]string) {
	if len(table) == 0 {
		return
	}
	e.scalar(key)
	e.startMapping()
	for _, module := range utils.SortedKeys(table) {
		e.scalar(module)
		e.sequence([]string{table[module]}, events.StyleFlow)
	}
	e.endMapping()
}

func (s *ModuleStreamV3) emit(e *emitter) {
	e.startDocument(s.DocumentType(), s.MdVersion())
	s.emitHeader(e)
	s.emitSummary(e)
	s.emitLicense(e)
	s.emitXmd(e)
	e.scalar("dependencies")
	e.startMapping()
	e.keyValue("platform", s.Platform)
	emitSingleStreamTable(e, "buildrequires", s.BuildtimeRequires)
	emitSingleStreamTable(e, "requires", s.RuntimeRequires)
	e.endMapping()
	s.emitReferences(e)
	s.emitBody(e, true)
	s.emitArtifacts(e, s.RpmArtifactMap)
	e.endDocument()
}
