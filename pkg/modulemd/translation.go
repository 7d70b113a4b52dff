package modulemd

import (
	"strconv"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
	"golang.org/x/exp/slices"
)

// Translation carries the localized texts of one module stream, keyed by
// locale.
type Translation struct {
	ModuleName   string
	ModuleStream string
	Modified     uint64
	Entries      map[string]*TranslationEntry
}

type TranslationEntry struct {
	Summary     string
	Description string
	// ProfileDescriptions maps a profile name to its description.
	ProfileDescriptions map[string]string
}

func NewTranslation(module string, stream string, modified uint64) *Translation {
	return &Translation{
		ModuleName:   module,
		ModuleStream: stream,
		Modified:     modified,
		Entries:      map[string]*TranslationEntry{},
	}
}

func (t *Translation) DocumentType() string {
	return DocTypeTranslations
}

func (t *Translation) MdVersion() uint64 {
	return 1
}

// SetEntry stores a copy of entry for locale.
func (t *Translation) SetEntry(locale string, entry *TranslationEntry) {
	if t.Entries == nil {
		t.Entries = map[string]*TranslationEntry{}
	}
	t.Entries[locale] = entry.Copy()
}

func (e *TranslationEntry) Copy() *TranslationEntry {
	return &TranslationEntry{
		Summary:             e.Summary,
		Description:         e.Description,
		ProfileDescriptions: utils.CopyMap(e.ProfileDescriptions),
	}
}

func (e *TranslationEntry) Equals(other *TranslationEntry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Summary == other.Summary &&
		e.Description == other.Description &&
		stringMapsEqual(e.ProfileDescriptions, other.ProfileDescriptions)
}

func (t *Translation) Copy() *Translation {
	if t == nil {
		return nil
	}
	out := NewTranslation(t.ModuleName, t.ModuleStream, t.Modified)
	for locale, entry := range t.Entries {
		out.Entries[locale] = entry.Copy()
	}
	return out
}

func (t *Translation) Equals(other *Translation) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ModuleName == other.ModuleName &&
		t.ModuleStream == other.ModuleStream &&
		t.Modified == other.Modified &&
		utils.MapsEqual(t.Entries, other.Entries, (*TranslationEntry).Equals)
}

func (t *Translation) Validate() error {
	if t.ModuleName == "" {
		return ce.NewMissingRequired("Translation module name is unset.")
	}
	if t.ModuleStream == "" {
		return ce.NewMissingRequired("Translation module stream is unset.")
	}
	if t.Modified == 0 {
		return ce.NewMissingRequired("Translation module modified is empty.")
	}
	return nil
}

// applyTo copies the texts of every locale onto s and its profiles.
func (t *Translation) applyTo(s *streamBase) {
	for locale, entry := range t.Entries {
		if entry.Summary != "" {
			s.SetSummaryTranslation(locale, entry.Summary)
		}
		if entry.Description != "" {
			s.SetDescriptionTranslation(locale, entry.Description)
		}
		for name, text := range entry.ProfileDescriptions {
			if profile, ok := s.Profiles[name]; ok {
				profile.SetDescriptionTranslation(locale, text)
			}
		}
	}
}

// ApplyTranslations copies every Translation onto the module streams it
// names. When several translate one stream the most recently modified wins.
func (i *Index) ApplyTranslations() {
	translations := i.Translations()
	slices.SortStableFunc(translations, func(a, b *Translation) int {
		switch {
		case a.Modified < b.Modified:
			return -1
		case a.Modified > b.Modified:
			return 1
		}
		return 0
	})
	for _, s := range i.ModuleStreams() {
		base := s.common()
		for _, t := range translations {
			if t.ModuleName == base.ModuleName && t.ModuleStream == base.StreamName {
				t.applyTo(base)
			}
		}
	}
}

func parseTranslation(p *parser) (*Translation, error) {
	t := NewTranslation("", "", 0)
	err := p.mapping("translation data", func(key events.Event) error {
		var err error
		switch key.Value {
		case "module":
			if t.ModuleName != "" {
				return malformed(key, "Module name encountered twice")
			}
			t.ModuleName, err = p.parseString()
		case "stream":
			if t.ModuleStream != "" {
				return malformed(key, "Module stream encountered twice")
			}
			t.ModuleStream, err = p.parseString()
		case "modified":
			t.Modified, err = p.parseUint64()
		case "translations":
			err = p.mapping("translations", func(locale events.Event) error {
				entry, err := parseTranslationEntry(p, locale.Value)
				if err != nil {
					return err
				}
				t.Entries[locale.Value] = entry
				return nil
			})
		default:
			err = p.skipUnknown(key, "translation data")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseTranslationEntry(p *parser, locale string) (*TranslationEntry, error) {
	entry := &TranslationEntry{}
	what := "translation entry " + locale
	err := p.mapping(what, func(key events.Event) error {
		var err error
		switch key.Value {
		case "summary":
			entry.Summary, err = p.parseString()
		case "description":
			entry.Description, err = p.parseString()
		case "profiles":
			entry.ProfileDescriptions, err = p.parseStringMap(what + " profiles")
		default:
			err = p.skipUnknown(key, what)
		}
		return err
	})
	return entry, err
}

func (t *Translation) emit(e *emitter) {
	e.startDocument(t.DocumentType(), t.MdVersion())
	e.keyValue("module", t.ModuleName)
	e.styledKeyValue("stream", t.ModuleStream, events.StyleDoubleQuoted)
	e.keyValue("modified", strconv.FormatUint(t.Modified, 10))
	if len(t.Entries) > 0 {
		e.scalar("translations")
		e.startMapping()
		for _, locale := range utils.SortedKeys(t.Entries) {
			entry := t.Entries[locale]
			e.scalar(locale)
			e.startMapping()
			e.keyValueIfSet("summary", entry.Summary)
			if entry.Description != "" {
				e.styledKeyValue("description", entry.Description, events.StyleFolded)
			}
			e.stringMapIfNonEmpty("profiles", entry.ProfileDescriptions)
			e.endMapping()
		}
		e.endMapping()
	}
	e.endDocument()
}
