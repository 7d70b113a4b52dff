package modulemd

import (
	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
	"github.com/pkg/errors"
)

// PackagerV3 is the document a packager submits. Every BuildConfig expands
// into one ModuleStreamV3 with the matching context.
type PackagerV3 struct {
	ModuleName  string
	StreamName  string
	Summary     string
	Description string

	ModuleLicenses StringSet
	Xmd            Xmd
	BuildConfigs   map[string]*BuildConfig

	Community     string
	Documentation string
	Tracker       string

	Profiles   map[string]*Profile
	RpmAPI     StringSet
	RpmFilters StringSet

	components
}

func NewPackagerV3(module string, stream string) *PackagerV3 {
	return &PackagerV3{
		ModuleName:   module,
		StreamName:   stream,
		BuildConfigs: map[string]*BuildConfig{},
		Profiles:     map[string]*Profile{},
		components:   newComponents(),
	}
}

func (pk *PackagerV3) DocumentType() string {
	return DocTypePackager
}

func (pk *PackagerV3) MdVersion() uint64 {
	return 3
}

// AddBuildConfig stores a copy of b keyed by its context.
func (pk *PackagerV3) AddBuildConfig(b *BuildConfig) {
	if pk.BuildConfigs == nil {
		pk.BuildConfigs = map[string]*BuildConfig{}
	}
	pk.BuildConfigs[b.Context] = b.Copy()
}

func (pk *PackagerV3) BuildConfigContexts() []string {
	return utils.SortedKeys(pk.BuildConfigs)
}

func (pk *PackagerV3) AddProfile(p *Profile) {
	if pk.Profiles == nil {
		pk.Profiles = map[string]*Profile{}
	}
	pk.Profiles[p.Name()] = p.Copy()
}

func (pk *PackagerV3) ProfileNames() []string {
	return utils.SortedKeys(pk.Profiles)
}

func (pk *PackagerV3) Copy() *PackagerV3 {
	out := &PackagerV3{
		ModuleName:     pk.ModuleName,
		StreamName:     pk.StreamName,
		Summary:        pk.Summary,
		Description:    pk.Description,
		ModuleLicenses: pk.ModuleLicenses.Copy(),
		Xmd:            pk.Xmd.Copy(),
		BuildConfigs:   make(map[string]*BuildConfig, len(pk.BuildConfigs)),
		Community:      pk.Community,
		Documentation:  pk.Documentation,
		Tracker:        pk.Tracker,
		Profiles:       make(map[string]*Profile, len(pk.Profiles)),
		RpmAPI:         pk.RpmAPI.Copy(),
		RpmFilters:     pk.RpmFilters.Copy(),
		components:     pk.components.copy(),
	}
	for ctx, b := range pk.BuildConfigs {
		out.BuildConfigs[ctx] = b.Copy()
	}
	for name, p := range pk.Profiles {
		out.Profiles[name] = p.Copy()
	}
	return out
}

func (pk *PackagerV3) Equals(other *PackagerV3) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.ModuleName == other.ModuleName &&
		pk.StreamName == other.StreamName &&
		pk.Summary == other.Summary &&
		pk.Description == other.Description &&
		pk.ModuleLicenses.Equal(other.ModuleLicenses) &&
		pk.Xmd.Equals(other.Xmd) &&
		utils.MapsEqual(pk.BuildConfigs, other.BuildConfigs, func(a, b *BuildConfig) bool { return a.Equals(b) }) &&
		pk.Community == other.Community &&
		pk.Documentation == other.Documentation &&
		pk.Tracker == other.Tracker &&
		utils.MapsEqual(pk.Profiles, other.Profiles, func(a, b *Profile) bool { return a.Equals(b) }) &&
		pk.RpmAPI.Equal(other.RpmAPI) &&
		pk.RpmFilters.Equal(other.RpmFilters) &&
		pk.components.equals(&other.components)
}

func (pk *PackagerV3) Validate() error {
	if pk.Summary == "" {
		return ce.NewMissingRequired("Summary is missing")
	}
	if pk.Description == "" {
		return ce.NewMissingRequired("Description is missing")
	}
	if pk.ModuleLicenses.IsEmpty() {
		return ce.NewMissingRequired("Module license is missing")
	}
	for _, ctx := range pk.BuildConfigContexts() {
		if err := pk.BuildConfigs[ctx].Validate(); err != nil {
			return err
		}
	}
	return pk.components.validate()
}

// ToModuleStreams expands every BuildConfig into a ModuleStreamV3, ordered
// by context.
func (pk *PackagerV3) ToModuleStreams() []*ModuleStreamV3 {
	streams := make([]*ModuleStreamV3, 0, len(pk.BuildConfigs))
	for _, ctx := range pk.BuildConfigContexts() {
		b := pk.BuildConfigs[ctx]
		s := NewModuleStreamV3(pk.ModuleName, pk.StreamName)
		s.Context = b.Context
		s.Platform = b.Platform
		s.BuildtimeRequires = copyStringMap(b.BuildtimeRequires)
		s.RuntimeRequires = copyStringMap(b.RuntimeRequires)
		s.Buildopts = b.Buildopts.Copy()
		s.Summary = pk.Summary
		s.Description = pk.Description
		s.ModuleLicenses = pk.ModuleLicenses.Copy()
		s.Xmd = pk.Xmd.Copy()
		s.Community = pk.Community
		s.Documentation = pk.Documentation
		s.Tracker = pk.Tracker
		for name, p := range pk.Profiles {
			s.Profiles[name] = p.Copy()
		}
		s.RpmAPI = pk.RpmAPI.Copy()
		s.RpmFilters = pk.RpmFilters.Copy()
		s.components = pk.components.copy()
		streams = append(streams, s)
	}
	return streams
}

func parsePackagerV3(p *parser) (*PackagerV3, error) {
	pk := NewPackagerV3("", "")
	err := p.mapping("PackagerV3", func(key events.Event) error {
		var err error
		switch key.Value {
		case "name":
			pk.ModuleName, err = p.parseString()
		case "stream":
			pk.StreamName, err = p.parseString()
		case "summary":
			pk.Summary, err = p.parseString()
		case "description":
			pk.Description, err = p.parseString()
		case "license":
			err = p.mapping("license", func(k events.Event) error {
				if k.Value != "module" {
					return p.skipUnknown(k, "license")
				}
				var err error
				pk.ModuleLicenses, err = p.parseStringSet("module license")
				return err
			})
		case "xmd":
			pk.Xmd, err = parseXmd(p)
		case "configurations":
			err = p.sequence("configurations", func(item events.Event) error {
				if item.Type != events.MappingStart {
					return malformed(item, "Build configuration was not a mapping")
				}
				b, err := parseBuildConfig(p)
				if err != nil {
					return errors.Wrap(err, "Failed to parse build configuration")
				}
				if _, ok := pk.BuildConfigs[b.Context]; ok {
					return malformed(item, "Duplicate build configuration context: %s", b.Context)
				}
				pk.BuildConfigs[b.Context] = b
				return nil
			})
		case "references":
			err = p.mapping("references", func(k events.Event) error {
				var err error
				switch k.Value {
				case "community":
					pk.Community, err = p.parseString()
				case "documentation":
					pk.Documentation, err = p.parseString()
				case "tracker":
					pk.Tracker, err = p.parseString()
				default:
					err = p.skipUnknown(k, "references")
				}
				return err
			})
		case "profiles":
			err = p.mapping("profiles", func(name events.Event) error {
				profile, err := parseProfile(p, name.Value, true)
				if err != nil {
					return err
				}
				pk.Profiles[name.Value] = profile
				return nil
			})
		case "api":
			pk.RpmAPI, err = p.parseStringSetFromMap("rpms", "api")
		case "filter":
			pk.RpmFilters, err = p.parseStringSetFromMap("rpms", "filter")
		case "components":
			err = pk.components.parse(p)
		default:
			err = p.skipUnknown(key, "PackagerV3")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return pk, nil
}

func (pk *PackagerV3) emit(e *emitter) {
	if pk.ModuleLicenses.IsEmpty() {
		e.fail(ce.NewEmit("Module licenses is not allowed to be empty"))
		return
	}
	e.startDocument(pk.DocumentType(), pk.MdVersion())
	e.keyValueIfSet("name", pk.ModuleName)
	if pk.StreamName != "" {
		e.styledKeyValue("stream", pk.StreamName, events.StyleDoubleQuoted)
	}
	e.keyValue("summary", pk.Summary)
	e.styledKeyValue("description", pk.Description, events.StyleFolded)
	e.scalar("license")
	e.startMapping()
	e.stringSet("module", pk.ModuleLicenses, events.StyleAny)
	e.endMapping()
	if pk.Xmd != nil {
		pk.Xmd.emit(e)
	}
	if len(pk.BuildConfigs) > 0 {
		e.scalar("configurations")
		e.startSequence(events.StyleAny)
		for _, ctx := range pk.BuildConfigContexts() {
			pk.BuildConfigs[ctx].emit(e)
		}
		e.endSequence()
	}
	if pk.Community != "" || pk.Documentation != "" || pk.Tracker != "" {
		e.scalar("references")
		e.startMapping()
		e.keyValueIfSet("community", pk.Community)
		e.keyValueIfSet("documentation", pk.Documentation)
		e.keyValueIfSet("tracker", pk.Tracker)
		e.endMapping()
	}
	if len(pk.Profiles) > 0 {
		e.scalar("profiles")
		e.startMapping()
		for _, name := range pk.ProfileNames() {
			pk.Profiles[name].emit(e, true)
		}
		e.endMapping()
	}
	e.stringSetFromMap("api", "rpms", pk.RpmAPI)
	e.stringSetFromMap("filter", "rpms", pk.RpmFilters)
	pk.components.emit(e)
	e.endDocument()
}
