package modulemd

import (
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/pkg/errors"
)

type ModuleStreamV2 struct {
	streamBase

	// StaticContext marks Context as fixed by the packager rather than
	// generated by the build system.
	StaticContext bool
	ServiceLevels map[string]*ServiceLevel
	// Dependencies are alternatives evaluated in order. Order is part of
	// the stream's identity.
	Dependencies   []*Dependencies
	RpmArtifactMap RpmMap

	obsoletes *Obsoletes
}

func NewModuleStreamV2(module string, stream string) *ModuleStreamV2 {
	return &ModuleStreamV2{
		streamBase:     newStreamBase(module, stream),
		ServiceLevels:  map[string]*ServiceLevel{},
		RpmArtifactMap: RpmMap{},
	}
}

func (s *ModuleStreamV2) MdVersion() uint64 {
	return 2
}

func (s *ModuleStreamV2) AddServiceLevel(sl *ServiceLevel) {
	if s.ServiceLevels == nil {
		s.ServiceLevels = map[string]*ServiceLevel{}
	}
	s.ServiceLevels[sl.Name()] = sl.Copy()
}

// AddDependencies appends a copy of deps.
func (s *ModuleStreamV2) AddDependencies(deps *Dependencies) {
	s.Dependencies = append(s.Dependencies, deps.Copy())
}

func (s *ModuleStreamV2) ClearDependencies() {
	s.Dependencies = nil
}

// AssociateObsoletes links o to the stream. It is never emitted.
func (s *ModuleStreamV2) AssociateObsoletes(o *Obsoletes) {
	s.obsoletes = o
}

// Obsoletes returns the associated Obsoletes unless it is a reset.
func (s *ModuleStreamV2) Obsoletes() *Obsoletes {
	return resolvedObsoletes(s.obsoletes)
}

func (s *ModuleStreamV2) DependsOnStream(module string, stream string) bool {
	for _, deps := range s.Dependencies {
		if deps.RequiresModuleAndStream(module, stream) {
			return true
		}
	}
	return false
}

func (s *ModuleStreamV2) BuildDependsOnStream(module string, stream string) bool {
	for _, deps := range s.Dependencies {
		if deps.BuildrequiresModuleAndStream(module, stream) {
			return true
		}
	}
	return false
}

func (s *ModuleStreamV2) Copy() *ModuleStreamV2 {
	out := &ModuleStreamV2{
		streamBase:     s.copyBase(),
		StaticContext:  s.StaticContext,
		ServiceLevels:  copyServiceLevels(s.ServiceLevels),
		RpmArtifactMap: s.RpmArtifactMap.Copy(),
		obsoletes:      s.obsoletes,
	}
	for _, deps := range s.Dependencies {
		out.Dependencies = append(out.Dependencies, deps.Copy())
	}
	return out
}

func (s *ModuleStreamV2) Equals(other *ModuleStreamV2) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.equalsBase(&other.streamBase) &&
		s.StaticContext == other.StaticContext &&
		serviceLevelsEqual(s.ServiceLevels, other.ServiceLevels) &&
		dependencyListsEqual(s.Dependencies, other.Dependencies) &&
		s.RpmArtifactMap.Equals(other.RpmArtifactMap) &&
		s.Obsoletes().Equals(other.Obsoletes())
}

func dependencyListsEqual(a []*Dependencies, b []*Dependencies) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func (s *ModuleStreamV2) Validate() error {
	if s.StaticContext && s.Context != "" {
		if err := ValidateStreamContext(s.Context); err != nil {
			return err
		}
	}
	if err := s.validateBase(); err != nil {
		return err
	}
	for _, deps := range s.Dependencies {
		if err := deps.Validate(); err != nil {
			return errors.Wrap(err, "Dependency failed to validate")
		}
	}
	return nil
}

// packagerV2Ignored are the ModuleStreamV2 keys a modulemd-packager v2
// document may not set. The build system fills them in.
var packagerV2Ignored = map[string]bool{
	"name": true, "stream": true, "version": true, "context": true, "arch": true,
	"servicelevels": true, "xmd": true, "buildopts": true, "artifacts": true,
}

// parseModuleStreamV2 reads a modulemd v2 document, or a modulemd-packager
// v2 document when packager is set.
func parseModuleStreamV2(p *parser, packager bool) (*ModuleStreamV2, error) {
	s := NewModuleStreamV2("", "")
	err := p.mapping("ModuleStreamV2", func(key events.Event) error {
		if packager {
			switch {
			case packagerV2Ignored[key.Value]:
				return p.skipUnknown(key, "modulemd-packager v2")
			case key.Value == "license":
				return s.parseModuleLicense(p)
			}
		}
		handled, err := s.parseBaseKey(p, key, false)
		if handled {
			return err
		}
		switch key.Value {
		case "static_context":
			s.StaticContext, err = p.parseBool()
			return err
		case "servicelevels":
			return parseServiceLevels(p, s.ServiceLevels)
		case "dependencies":
			return p.sequence("dependencies", func(item events.Event) error {
				if item.Type != events.MappingStart {
					return malformed(item, "Dependencies entry was not a mapping")
				}
				deps, err := parseDependencies(p)
				if err != nil {
					return err
				}
				s.Dependencies = append(s.Dependencies, deps)
				return nil
			})
		case "artifacts":
			return s.parseArtifacts(p, &s.RpmArtifactMap)
		}
		return p.skipUnknown(key, "ModuleStreamV2")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ModuleStreamV2) emit(e *emitter) {
	e.startDocument(s.DocumentType(), s.MdVersion())
	s.emitHeader(e)
	if s.StaticContext {
		e.keyValue("static_context", "true")
	}
	s.emitSummary(e)
	emitServiceLevels(e, s.ServiceLevels)
	s.emitLicense(e)
	s.emitXmd(e)
	if len(s.Dependencies) > 0 {
		e.scalar("dependencies")
		e.startSequence(events.StyleAny)
		for _, deps := range s.Dependencies {
			deps.emit(e)
		}
		e.endSequence()
	}
	s.emitReferences(e)
	s.emitBody(e, false)
	s.emitArtifacts(e, s.RpmArtifactMap)
	e.endDocument()
}
