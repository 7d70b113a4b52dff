package modulemd

import (
	"github.com/content-services/modulemd-backend/pkg/events"
)

// rawhideServiceLevel receives the date of the V1 `eol` key.
const rawhideServiceLevel = "rawhide"

type ModuleStreamV1 struct {
	streamBase

	ServiceLevels     map[string]*ServiceLevel
	BuildtimeRequires map[string]string
	RuntimeRequires   map[string]string
}

func NewModuleStreamV1(module string, stream string) *ModuleStreamV1 {
	return &ModuleStreamV1{
		streamBase:        newStreamBase(module, stream),
		ServiceLevels:     map[string]*ServiceLevel{},
		BuildtimeRequires: map[string]string{},
		RuntimeRequires:   map[string]string{},
	}
}

func (s *ModuleStreamV1) MdVersion() uint64 {
	return 1
}

func (s *ModuleStreamV1) AddServiceLevel(sl *ServiceLevel) {
	if s.ServiceLevels == nil {
		s.ServiceLevels = map[string]*ServiceLevel{}
	}
	s.ServiceLevels[sl.Name()] = sl.Copy()
}

func (s *ModuleStreamV1) AddBuildtimeRequirement(module string, stream string) {
	if s.BuildtimeRequires == nil {
		s.BuildtimeRequires = map[string]string{}
	}
	s.BuildtimeRequires[module] = stream
}

func (s *ModuleStreamV1) AddRuntimeRequirement(module string, stream string) {
	if s.RuntimeRequires == nil {
		s.RuntimeRequires = map[string]string{}
	}
	s.RuntimeRequires[module] = stream
}

func (s *ModuleStreamV1) DependsOnStream(module string, stream string) bool {
	required, ok := s.RuntimeRequires[module]
	return ok && required == stream
}

func (s *ModuleStreamV1) BuildDependsOnStream(module string, stream string) bool {
	required, ok := s.BuildtimeRequires[module]
	return ok && required == stream
}

func (s *ModuleStreamV1) Copy() *ModuleStreamV1 {
	return &ModuleStreamV1{
		streamBase:        s.copyBase(),
		ServiceLevels:     copyServiceLevels(s.ServiceLevels),
		BuildtimeRequires: copyStringMap(s.BuildtimeRequires),
		RuntimeRequires:   copyStringMap(s.RuntimeRequires),
	}
}

func (s *ModuleStreamV1) Equals(other *ModuleStreamV1) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.equalsBase(&other.streamBase) &&
		serviceLevelsEqual(s.ServiceLevels, other.ServiceLevels) &&
		stringMapsEqual(s.BuildtimeRequires, other.BuildtimeRequires) &&
		stringMapsEqual(s.RuntimeRequires, other.RuntimeRequires)
}

func (s *ModuleStreamV1) Validate() error {
	return s.validateBase()
}

func parseModuleStreamV1(p *parser) (*ModuleStreamV1, error) {
	s := NewModuleStreamV1("", "")
	err := p.mapping("ModuleStreamV1", func(key events.Event) error {
		handled, err := s.parseBaseKey(p, key, false)
		if handled {
			return err
		}
		switch key.Value {
		case "servicelevels":
			return parseServiceLevels(p, s.ServiceLevels)
		case "eol":
			// Historical documents carry a single eol date; it is kept as
			// the rawhide service level so they still load.
			date, err := p.parseDate()
			if err != nil {
				return err
			}
			sl := NewServiceLevel(rawhideServiceLevel)
			sl.SetEOL(date)
			s.ServiceLevels[rawhideServiceLevel] = sl
			return nil
		case "dependencies":
			return s.parseDependencies(p)
		case "artifacts":
			return s.parseArtifacts(p, nil)
		}
		return p.skipUnknown(key, "ModuleStreamV1")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ModuleStreamV1) parseDependencies(p *parser) error {
	return p.mapping("dependencies", func(k events.Event) error {
		var err error
		switch k.Value {
		case "buildrequires":
			s.BuildtimeRequires, err = p.parseStringMap("buildrequires")
		case "requires":
			s.RuntimeRequires, err = p.parseStringMap("requires")
		default:
			err = p.skipUnknown(k, "dependencies")
		}
		return err
	})
}

func (s *ModuleStreamV1) emit(e *emitter) {
	e.startDocument(s.DocumentType(), s.MdVersion())
	s.emitHeader(e)
	s.emitSummary(e)
	emitServiceLevels(e, s.ServiceLevels)
	s.emitLicense(e)
	s.emitXmd(e)
	if len(s.BuildtimeRequires) > 0 || len(s.RuntimeRequires) > 0 {
		e.scalar("dependencies")
		e.startMapping()
		e.stringMapIfNonEmpty("buildrequires", s.BuildtimeRequires)
		e.stringMapIfNonEmpty("requires", s.RuntimeRequires)
		e.endMapping()
	}
	s.emitReferences(e)
	s.emitBody(e, false)
	s.emitArtifacts(e, nil)
	e.endDocument()
}
