package modulemd

import (
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// Profile is a named set of packages installed together. A profile never
// points back at its stream; callers look it up by name.
type Profile struct {
	name        string
	Description string
	Rpms        StringSet
	// Default marks the profile installed when none is named. Emitted for
	// V3 and packager documents only.
	Default bool

	descriptionTranslations map[string]string
}

func NewProfile(name string) *Profile {
	return &Profile{name: name}
}

func (p *Profile) Name() string {
	return p.name
}

// SetDescriptionTranslation records the description for locale.
func (p *Profile) SetDescriptionTranslation(locale string, text string) {
	if p.descriptionTranslations == nil {
		p.descriptionTranslations = map[string]string{}
	}
	p.descriptionTranslations[locale] = text
}

// LocalizedDescription returns the translation for locale, falling back to
// the untranslated description.
func (p *Profile) LocalizedDescription(locale string) string {
	return localized(p.descriptionTranslations, locale, p.Description)
}

func (p *Profile) Copy() *Profile {
	return &Profile{
		name:                    p.name,
		Description:             p.Description,
		Rpms:                    p.Rpms.Copy(),
		Default:                 p.Default,
		descriptionTranslations: utils.CopyMap(p.descriptionTranslations),
	}
}

func (p *Profile) Equals(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.name == other.name &&
		p.Description == other.Description &&
		p.Default == other.Default &&
		p.Rpms.Equal(other.Rpms)
}

func parseProfile(p *parser, name string, allowDefault bool) (*Profile, error) {
	profile := NewProfile(name)
	what := "profile " + name
	err := p.mapping(what, func(k events.Event) error {
		var err error
		switch {
		case k.Value == "description":
			profile.Description, err = p.parseString()
		case k.Value == "rpms":
			profile.Rpms, err = p.parseStringSet(what + " rpms")
		case k.Value == "default" && allowDefault:
			profile.Default, err = p.parseBool()
		default:
			err = p.skipUnknown(k, what)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *Profile) emit(e *emitter, withDefault bool) {
	e.scalar(p.name)
	e.startMapping()
	e.keyValueIfSet("description", p.Description)
	e.stringSetIfNonEmpty("rpms", p.Rpms, events.StyleAny)
	if withDefault && p.Default {
		e.keyValue("default", "true")
	}
	e.endMapping()
}

func localized(translations map[string]string, locale string, fallback string) string {
	if locale != "" && locale != "C" {
		if text, ok := translations[locale]; ok {
			return text
		}
	}
	return fallback
}
