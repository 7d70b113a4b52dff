package modulemd

import (
	"path"
	"strconv"
	"strings"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

const (
	DocTypeModuleStream = "modulemd"
	DocTypePackager     = "modulemd-packager"
	DocTypeObsoletes    = "modulemd-obsoletes"
	DocTypeDefaults     = "modulemd-defaults"
	DocTypeTranslations = "modulemd-translations"
)

// Document is anything that can be read from or written to a modulemd
// YAML stream.
type Document interface {
	DocumentType() string
	MdVersion() uint64
	Validate() error
	emit(e *emitter)
}

// ModuleStream is implemented by *ModuleStreamV1, *ModuleStreamV2 and
// *ModuleStreamV3.
type ModuleStream interface {
	Document
	NSVCA() string
	DependsOnStream(module string, stream string) bool
	BuildDependsOnStream(module string, stream string) bool
	common() *streamBase
}

// streamBase holds the fields every stream version shares.
type streamBase struct {
	ModuleName string
	StreamName string
	Version    uint64
	// Context may be empty before context generation.
	Context string
	Arch    string

	Summary     string
	Description string

	ModuleLicenses  StringSet
	ContentLicenses StringSet
	Xmd             Xmd

	Community     string
	Documentation string
	Tracker       string

	Profiles     map[string]*Profile
	RpmAPI       StringSet
	RpmFilters   StringSet
	RpmArtifacts StringSet
	Buildopts    *Buildopts

	components

	summaryTranslations     map[string]string
	descriptionTranslations map[string]string
}

func newStreamBase(module string, stream string) streamBase {
	return streamBase{
		ModuleName: module,
		StreamName: stream,
		Profiles:   map[string]*Profile{},
		components: newComponents(),
	}
}

func (s *streamBase) common() *streamBase {
	return s
}

func (s *streamBase) DocumentType() string {
	return DocTypeModuleStream
}

// NSVCA is name:stream:version:context:arch with empty trailing parts
// dropped.
func (s *streamBase) NSVCA() string {
	if s.ModuleName == "" || s.StreamName == "" {
		return ""
	}
	nsvca := strings.Join([]string{s.ModuleName, s.StreamName, strconv.FormatUint(s.Version, 10), s.Context, s.Arch}, ":")
	return strings.TrimRight(nsvca, ":")
}

func (s *streamBase) SetSummaryTranslation(locale string, text string) {
	if s.summaryTranslations == nil {
		s.summaryTranslations = map[string]string{}
	}
	s.summaryTranslations[locale] = text
}

func (s *streamBase) SetDescriptionTranslation(locale string, text string) {
	if s.descriptionTranslations == nil {
		s.descriptionTranslations = map[string]string{}
	}
	s.descriptionTranslations[locale] = text
}

// LocalizedSummary returns the summary translated for locale when a
// translation exists. Locale "C" and the empty locale always return the
// untranslated text.
func (s *streamBase) LocalizedSummary(locale string) string {
	return localized(s.summaryTranslations, locale, s.Summary)
}

func (s *streamBase) LocalizedDescription(locale string) string {
	return localized(s.descriptionTranslations, locale, s.Description)
}

// AddProfile stores a copy of p under its name.
func (s *streamBase) AddProfile(p *Profile) {
	if s.Profiles == nil {
		s.Profiles = map[string]*Profile{}
	}
	s.Profiles[p.Name()] = p.Copy()
}

func (s *streamBase) RemoveProfile(name string) {
	delete(s.Profiles, name)
}

func (s *streamBase) ProfileNames() []string {
	return utils.SortedKeys(s.Profiles)
}

func (s *streamBase) RpmComponentNames() []string {
	return utils.SortedKeys(s.RpmComponents)
}

func (s *streamBase) ModuleComponentNames() []string {
	return utils.SortedKeys(s.ModuleComponents)
}

// IncludesNevra reports whether any artifact matches the glob pattern.
func (s *streamBase) IncludesNevra(pattern string) bool {
	for _, nevra := range s.RpmArtifacts.Values() {
		if ok, err := path.Match(pattern, nevra); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *streamBase) copyBase() streamBase {
	out := streamBase{
		ModuleName:              s.ModuleName,
		StreamName:              s.StreamName,
		Version:                 s.Version,
		Context:                 s.Context,
		Arch:                    s.Arch,
		Summary:                 s.Summary,
		Description:             s.Description,
		ModuleLicenses:          s.ModuleLicenses.Copy(),
		ContentLicenses:         s.ContentLicenses.Copy(),
		Xmd:                     s.Xmd.Copy(),
		Community:               s.Community,
		Documentation:           s.Documentation,
		Tracker:                 s.Tracker,
		Profiles:                map[string]*Profile{},
		RpmAPI:                  s.RpmAPI.Copy(),
		RpmFilters:              s.RpmFilters.Copy(),
		RpmArtifacts:            s.RpmArtifacts.Copy(),
		Buildopts:               s.Buildopts.Copy(),
		components:              s.components.copy(),
		summaryTranslations:     utils.CopyMap(s.summaryTranslations),
		descriptionTranslations: utils.CopyMap(s.descriptionTranslations),
	}
	for name, p := range s.Profiles {
		out.Profiles[name] = p.Copy()
	}
	return out
}

func (s *streamBase) equalsBase(other *streamBase) bool {
	return s.ModuleName == other.ModuleName &&
		s.StreamName == other.StreamName &&
		s.Version == other.Version &&
		s.Context == other.Context &&
		s.Arch == other.Arch &&
		s.Summary == other.Summary &&
		s.Description == other.Description &&
		s.ModuleLicenses.Equal(other.ModuleLicenses) &&
		s.ContentLicenses.Equal(other.ContentLicenses) &&
		s.Xmd.Equals(other.Xmd) &&
		s.Community == other.Community &&
		s.Documentation == other.Documentation &&
		s.Tracker == other.Tracker &&
		utils.MapsEqual(s.Profiles, other.Profiles, func(a, b *Profile) bool { return a.Equals(b) }) &&
		s.RpmAPI.Equal(other.RpmAPI) &&
		s.RpmFilters.Equal(other.RpmFilters) &&
		s.RpmArtifacts.Equal(other.RpmArtifacts) &&
		s.Buildopts.Equals(other.Buildopts) &&
		s.components.equals(&other.components)
}

// validateBase runs the checks shared by every stream version.
func (s *streamBase) validateBase() error {
	if s.LocalizedSummary("C") == "" {
		return ce.NewMissingRequired("Summary is missing")
	}
	if s.LocalizedDescription("C") == "" {
		return ce.NewMissingRequired("Description is missing")
	}
	if s.ModuleLicenses.IsEmpty() {
		return ce.NewMissingRequired("Module license is missing")
	}
	if err := s.components.validate(); err != nil {
		return err
	}
	if s.Buildopts != nil {
		if err := s.components.validateArches(s.Buildopts.Arches); err != nil {
			return err
		}
	}
	for _, nevra := range s.RpmArtifacts.Values() {
		if !ValidateNevra(nevra) {
			return ce.NewValidation("Artifact '%s' was not in valid N-E:V-R.A format.", nevra)
		}
	}
	return nil
}

// ValidateNevra checks the N-E:V-R.A shape, reading from the end since the
// name may contain any number of hyphens.
func ValidateNevra(nevra string) bool {
	dot := strings.LastIndexByte(nevra, '.')
	if dot < 0 {
		return false
	}
	release := strings.LastIndexByte(nevra[:dot], '-')
	if release < 0 {
		return false
	}
	colon := strings.LastIndexByte(nevra[:release], ':')
	if colon < 0 {
		return false
	}
	epochStart := strings.LastIndexByte(nevra[:colon], '-')
	if epochStart < 0 {
		return false
	}
	epoch := nevra[epochStart+1 : colon]
	if epoch == "" {
		return false
	}
	_, err := strconv.ParseUint(epoch, 10, 64)
	return err == nil
}

// ValidateStreamContext applies the context rules of V2 static contexts and
// V3 streams.
func ValidateStreamContext(context string) error {
	if context == "" {
		return ce.NewValidation("Empty stream context")
	}
	if len(context) > MaxContextLength {
		return ce.NewValidation("Stream context '%s' exceeds maximum length (%d)", context, MaxContextLength)
	}
	if !isAlphanumeric(context) {
		return ce.NewValidation("Non-alphanumeric character in stream context '%s'", context)
	}
	return nil
}

// parseBaseKey handles the keys every stream version accepts. It returns
// false for keys it does not know.
func (s *streamBase) parseBaseKey(p *parser, key events.Event, profileDefaults bool) (bool, error) {
	var err error
	switch key.Value {
	case "name":
		s.ModuleName, err = p.parseString()
	case "stream":
		s.StreamName, err = p.parseString()
	case "version":
		s.Version, err = p.parseUint64()
	case "context":
		s.Context, err = p.parseString()
	case "arch":
		s.Arch, err = p.parseString()
	case "summary":
		s.Summary, err = p.parseString()
	case "description":
		s.Description, err = p.parseString()
	case "license":
		err = s.parseLicense(p)
	case "xmd":
		s.Xmd, err = parseXmd(p)
	case "references":
		err = s.parseReferences(p)
	case "profiles":
		err = p.mapping("profiles", func(name events.Event) error {
			profile, err := parseProfile(p, name.Value, profileDefaults)
			if err != nil {
				return err
			}
			s.Profiles[name.Value] = profile
			return nil
		})
	case "api":
		s.RpmAPI, err = p.parseStringSetFromMap("rpms", "api")
	case "filter":
		s.RpmFilters, err = p.parseStringSetFromMap("rpms", "filter")
	case "buildopts":
		s.Buildopts, err = parseBuildopts(p)
	case "components":
		err = s.components.parse(p)
	default:
		return false, nil
	}
	return true, err
}

func (s *streamBase) parseLicense(p *parser) error {
	return p.mapping("license", func(k events.Event) error {
		var err error
		switch k.Value {
		case "module":
			s.ModuleLicenses, err = p.parseStringSet("module license")
		case "content":
			s.ContentLicenses, err = p.parseStringSet("content license")
		default:
			err = p.skipUnknown(k, "license")
		}
		return err
	})
}

// parseModuleLicense reads a license mapping that may only carry module
// licenses.
func (s *streamBase) parseModuleLicense(p *parser) error {
	return p.mapping("license", func(k events.Event) error {
		if k.Value != "module" {
			return p.skipUnknown(k, "license")
		}
		var err error
		s.ModuleLicenses, err = p.parseStringSet("module license")
		return err
	})
}

func (s *streamBase) parseReferences(p *parser) error {
	return p.mapping("references", func(k events.Event) error {
		var err error
		switch k.Value {
		case "community":
			s.Community, err = p.parseString()
		case "documentation":
			s.Documentation, err = p.parseString()
		case "tracker":
			s.Tracker, err = p.parseString()
		default:
			err = p.skipUnknown(k, "references")
		}
		return err
	})
}

// parseArtifacts reads `artifacts`. rpm-map is only accepted when rpmMap
// is not nil.
func (s *streamBase) parseArtifacts(p *parser, rpmMap *RpmMap) error {
	return p.mapping("artifacts", func(k events.Event) error {
		var err error
		switch {
		case k.Value == "rpms":
			s.RpmArtifacts, err = p.parseStringSet("artifacts rpms")
		case k.Value == "rpm-map" && rpmMap != nil:
			*rpmMap, err = parseRpmMap(p)
		default:
			err = p.skipUnknown(k, "artifacts")
		}
		return err
	})
}

// emitHeader writes the identity keys. The stream name is always quoted so
// a numeric looking stream such as 5.30 is not read back as a number.
func (s *streamBase) emitHeader(e *emitter) {
	e.keyValueIfSet("name", s.ModuleName)
	if s.StreamName != "" {
		e.styledKeyValue("stream", s.StreamName, events.StyleDoubleQuoted)
	}
	if s.Version != 0 {
		e.keyValue("version", strconv.FormatUint(s.Version, 10))
	}
	e.keyValueIfSet("context", s.Context)
}

func (s *streamBase) emitSummary(e *emitter) {
	e.keyValueIfSet("arch", s.Arch)
	e.keyValue("summary", s.Summary)
	e.styledKeyValue("description", s.Description, events.StyleFolded)
}

func (s *streamBase) emitLicense(e *emitter) {
	if s.ModuleLicenses.IsEmpty() {
		e.fail(ce.NewEmit("Module licenses is not allowed to be empty"))
		return
	}
	e.scalar("license")
	e.startMapping()
	e.stringSet("module", s.ModuleLicenses, events.StyleAny)
	e.stringSetIfNonEmpty("content", s.ContentLicenses, events.StyleAny)
	e.endMapping()
}

func (s *streamBase) emitXmd(e *emitter) {
	if s.Xmd != nil {
		s.Xmd.emit(e)
	}
}

func (s *streamBase) emitReferences(e *emitter) {
	if s.Community == "" && s.Documentation == "" && s.Tracker == "" {
		return
	}
	e.scalar("references")
	e.startMapping()
	e.keyValueIfSet("community", s.Community)
	e.keyValueIfSet("documentation", s.Documentation)
	e.keyValueIfSet("tracker", s.Tracker)
	e.endMapping()
}

// emitBody writes profiles, api, filter, buildopts and components.
func (s *streamBase) emitBody(e *emitter, profileDefaults bool) {
	if len(s.Profiles) > 0 {
		e.scalar("profiles")
		e.startMapping()
		for _, name := range s.ProfileNames() {
			s.Profiles[name].emit(e, profileDefaults)
		}
		e.endMapping()
	}
	e.stringSetFromMap("api", "rpms", s.RpmAPI)
	e.stringSetFromMap("filter", "rpms", s.RpmFilters)
	emitBuildoptsIfSet(e, s.Buildopts)
	s.components.emit(e)
}

func (s *streamBase) emitArtifacts(e *emitter, rpmMap RpmMap) {
	if s.RpmArtifacts.IsEmpty() && len(rpmMap) == 0 {
		return
	}
	e.scalar("artifacts")
	e.startMapping()
	e.stringSetIfNonEmpty("rpms", s.RpmArtifacts, events.StyleAny)
	if len(rpmMap) > 0 {
		rpmMap.emit(e)
	}
	e.endMapping()
}

func parseServiceLevels(p *parser, into map[string]*ServiceLevel) error {
	return p.mapping("servicelevels", func(name events.Event) error {
		sl, err := parseServiceLevel(p, name.Value)
		if err != nil {
			return err
		}
		into[name.Value] = sl
		return nil
	})
}

func emitServiceLevels(e *emitter, levels map[string]*ServiceLevel) {
	if len(levels) == 0 {
		return
	}
	e.scalar("servicelevels")
	e.startMapping()
	for _, name := range utils.SortedKeys(levels) {
		levels[name].emit(e)
	}
	e.endMapping()
}

func copyServiceLevels(levels map[string]*ServiceLevel) map[string]*ServiceLevel {
	out := make(map[string]*ServiceLevel, len(levels))
	for name, sl := range levels {
		out[name] = sl.Copy()
	}
	return out
}

func serviceLevelsEqual(a map[string]*ServiceLevel, b map[string]*ServiceLevel) bool {
	return utils.MapsEqual(a, b, func(x, y *ServiceLevel) bool { return x.Equals(y) })
}
