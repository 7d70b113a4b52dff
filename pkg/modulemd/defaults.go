package modulemd

import (
	"strconv"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// Defaults names the stream and profiles installed for a module when the
// user does not choose. Intents override the defaults per system purpose,
// such as server or workstation.
type Defaults struct {
	ModuleName string
	// Modified orders competing defaults for one module, usually as
	// YYYYMMDDHHMM.
	Modified      uint64
	DefaultStream string
	// Profiles maps a stream name to its default profiles.
	Profiles map[string]StringSet
	Intents  map[string]*Intent
}

// Intent is the per-purpose override of a Defaults. An empty DefaultStream
// means the intent keeps the module default.
type Intent struct {
	DefaultStream string
	Profiles      map[string]StringSet
}

func NewDefaults(module string) *Defaults {
	return &Defaults{
		ModuleName: module,
		Profiles:   map[string]StringSet{},
		Intents:    map[string]*Intent{},
	}
}

func (d *Defaults) DocumentType() string {
	return DocTypeDefaults
}

func (d *Defaults) MdVersion() uint64 {
	return 1
}

// AddDefaultProfile adds profile to the defaults of stream, for intent when
// it is not empty.
func (d *Defaults) AddDefaultProfile(stream string, profile string, intent string) {
	profiles := d.profiles(intent)
	set := profiles[stream].Copy()
	set.Add(profile)
	profiles[stream] = set
}

// SetEmptyDefaultProfiles records that stream has explicitly no default
// profiles.
func (d *Defaults) SetEmptyDefaultProfiles(stream string, intent string) {
	d.profiles(intent)[stream] = StringSet{}
}

func (d *Defaults) profiles(intent string) map[string]StringSet {
	if intent != "" {
		return d.intent(intent).Profiles
	}
	if d.Profiles == nil {
		d.Profiles = map[string]StringSet{}
	}
	return d.Profiles
}

func (d *Defaults) SetDefaultStream(stream string, intent string) {
	if intent != "" {
		d.intent(intent).DefaultStream = stream
		return
	}
	d.DefaultStream = stream
}

// DefaultStreamFor returns the default stream for intent, falling back to the
// module default.
func (d *Defaults) DefaultStreamFor(intent string) string {
	if i, ok := d.Intents[intent]; ok && i.DefaultStream != "" {
		return i.DefaultStream
	}
	return d.DefaultStream
}

// DefaultProfilesFor returns the sorted default profiles of stream for
// intent, falling back to the module defaults. The second result is false
// when neither names the stream.
func (d *Defaults) DefaultProfilesFor(stream string, intent string) ([]string, bool) {
	if i, ok := d.Intents[intent]; ok {
		if set, ok := i.Profiles[stream]; ok {
			return set.Values(), true
		}
	}
	set, ok := d.Profiles[stream]
	return set.Values(), ok
}

func (d *Defaults) intent(name string) *Intent {
	if d.Intents == nil {
		d.Intents = map[string]*Intent{}
	}
	i, ok := d.Intents[name]
	if !ok {
		i = &Intent{Profiles: map[string]StringSet{}}
		d.Intents[name] = i
	}
	if i.Profiles == nil {
		i.Profiles = map[string]StringSet{}
	}
	return i
}

func (d *Defaults) Copy() *Defaults {
	if d == nil {
		return nil
	}
	out := &Defaults{
		ModuleName:    d.ModuleName,
		Modified:      d.Modified,
		DefaultStream: d.DefaultStream,
		Profiles:      copyNestedSet(d.Profiles),
		Intents:       make(map[string]*Intent, len(d.Intents)),
	}
	for name, i := range d.Intents {
		out.Intents[name] = &Intent{DefaultStream: i.DefaultStream, Profiles: copyNestedSet(i.Profiles)}
	}
	return out
}

func (d *Defaults) Equals(other *Defaults) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ModuleName == other.ModuleName &&
		d.Modified == other.Modified &&
		d.DefaultStream == other.DefaultStream &&
		nestedSetsEqual(d.Profiles, other.Profiles) &&
		utils.MapsEqual(d.Intents, other.Intents, func(a *Intent, b *Intent) bool {
			return a.DefaultStream == b.DefaultStream && nestedSetsEqual(a.Profiles, b.Profiles)
		})
}

func (d *Defaults) Validate() error {
	if d.ModuleName == "" {
		return ce.NewMissingRequired("Defaults module name is unset.")
	}
	return nil
}

func parseDefaults(p *parser) (*Defaults, error) {
	d := NewDefaults("")
	hasStream := false
	err := p.mapping("defaults data", func(key events.Event) error {
		var err error
		switch key.Value {
		case "module":
			if d.ModuleName != "" {
				return malformed(key, "Module name encountered twice.")
			}
			d.ModuleName, err = p.parseString()
		case "modified":
			d.Modified, err = p.parseUint64()
		case "stream":
			if hasStream {
				return malformed(key, "Default stream encountered twice.")
			}
			hasStream = true
			d.DefaultStream, err = p.parseString()
		case "profiles":
			d.Profiles, err = p.parseNestedSet("profile defaults")
		case "intents":
			err = p.mapping("intents", func(name events.Event) error {
				if _, ok := d.Intents[name.Value]; ok {
					return malformed(name, "Encountered intent name %s more than once in defaults", name.Value)
				}
				i, err := parseIntent(p)
				if err != nil {
					return err
				}
				d.Intents[name.Value] = i
				return nil
			})
		default:
			err = p.skipUnknown(key, "defaults data")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseIntent(p *parser) (*Intent, error) {
	i := &Intent{Profiles: map[string]StringSet{}}
	hasStream := false
	err := p.mapping("intent data", func(key events.Event) error {
		var err error
		switch key.Value {
		case "stream":
			if hasStream {
				return malformed(key, "Default stream encountered twice.")
			}
			hasStream = true
			i.DefaultStream, err = p.parseString()
		case "profiles":
			i.Profiles, err = p.parseNestedSet("profile defaults")
		default:
			err = p.skipUnknown(key, "intent data")
		}
		return err
	})
	return i, err
}

func (d *Defaults) emit(e *emitter) {
	e.startDocument(d.DocumentType(), d.MdVersion())
	e.keyValue("module", d.ModuleName)
	if d.Modified != 0 {
		e.keyValue("modified", strconv.FormatUint(d.Modified, 10))
	}
	if d.DefaultStream != "" {
		e.styledKeyValue("stream", d.DefaultStream, events.StyleDoubleQuoted)
	}
	if len(d.Profiles) > 0 {
		e.nestedSet("profiles", d.Profiles)
	}
	if len(d.Intents) > 0 {
		e.scalar("intents")
		e.startMapping()
		for _, name := range utils.SortedKeys(d.Intents) {
			i := d.Intents[name]
			e.scalar(name)
			e.startMapping()
			if i.DefaultStream != "" {
				e.styledKeyValue("stream", i.DefaultStream, events.StyleDoubleQuoted)
			}
			if len(i.Profiles) > 0 {
				e.nestedSet("profiles", i.Profiles)
			}
			e.endMapping()
		}
		e.endMapping()
	}
	e.endDocument()
}
