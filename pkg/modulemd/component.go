package modulemd

import (
	"strconv"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
)

// Component is implemented by *RpmComponent and *ModuleComponent only.
type Component interface {
	// Key is the identity the component is stored under in its stream.
	Key() string
	Validate() error
	common() *componentBase
}

type componentBase struct {
	key string

	// Name is the display name. It follows the key unless overridden.
	Name       string
	Rationale  string
	BuildOrder int64
	BuildAfter StringSet
	BuildOnly  bool
}

func newComponentBase(key string) componentBase {
	return componentBase{key: key, Name: key}
}

func (c *componentBase) Key() string {
	return c.key
}

func (c *componentBase) common() *componentBase {
	return c
}

// copyTo duplicates c under key. An empty key keeps the current one.
func (c *componentBase) copyTo(key string) componentBase {
	if key == "" {
		key = c.key
	}
	out := *c
	out.key = key
	if c.Name == c.key {
		out.Name = key
	}
	out.BuildAfter = c.BuildAfter.Copy()
	return out
}

func (c *componentBase) equals(other *componentBase) bool {
	return c.key == other.key &&
		c.Name == other.Name &&
		c.Rationale == other.Rationale &&
		c.BuildOrder == other.BuildOrder &&
		c.BuildOnly == other.BuildOnly &&
		c.BuildAfter.Equal(other.BuildAfter)
}

func (c *componentBase) Validate() error {
	if c.BuildOrder != 0 && !c.BuildAfter.IsEmpty() {
		return ce.NewValidation("Cannot mix buildorder and buildafter in component %s", c.key)
	}
	return nil
}

// parseKey handles the keys every component kind accepts. It returns false
// for keys it does not know.
func (c *componentBase) parseKey(p *parser, key events.Event) (bool, error) {
	var err error
	switch key.Value {
	case "rationale":
		c.Rationale, err = p.parseString()
	case "name":
		c.Name, err = p.parseString()
	case "buildorder":
		c.BuildOrder, err = p.parseInt64()
	case "buildafter":
		c.BuildAfter, err = p.parseStringSet("buildafter")
	case "buildonly":
		c.BuildOnly, err = p.parseBool()
	default:
		return false, nil
	}
	return true, err
}

func (c *componentBase) emitStart(e *emitter) {
	e.scalar(c.key)
	e.startMapping()
	e.keyValueIfSet("rationale", c.Rationale)
	if c.Name != c.key {
		e.keyValueIfSet("name", c.Name)
	}
}

func (c *componentBase) emitBuildOrder(e *emitter) {
	if c.BuildOnly {
		e.keyValue("buildonly", "true")
	}
	if c.BuildOrder != 0 {
		e.keyValue("buildorder", strconv.FormatInt(c.BuildOrder, 10))
	} else if !c.BuildAfter.IsEmpty() {
		e.stringSet("buildafter", c.BuildAfter, events.StyleAny)
	}
}

type RpmComponent struct {
	componentBase
	Repository    string
	Ref           string
	Cache         string
	Arches        StringSet
	Multilib      StringSet
	Buildroot     bool
	SrpmBuildroot bool
}

func NewRpmComponent(key string) *RpmComponent {
	return &RpmComponent{componentBase: newComponentBase(key)}
}

// Copy returns an independent copy stored under key, or under the same key
// when key is empty.
func (c *RpmComponent) Copy(key string) *RpmComponent {
	out := *c
	out.componentBase = c.componentBase.copyTo(key)
	out.Arches = c.Arches.Copy()
	out.Multilib = c.Multilib.Copy()
	return &out
}

func (c *RpmComponent) Equals(other *RpmComponent) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.componentBase.equals(&other.componentBase) &&
		c.Repository == other.Repository &&
		c.Ref == other.Ref &&
		c.Cache == other.Cache &&
		c.Buildroot == other.Buildroot &&
		c.SrpmBuildroot == other.SrpmBuildroot &&
		c.Arches.Equal(other.Arches) &&
		c.Multilib.Equal(other.Multilib)
}

func parseRpmComponent(p *parser, key string) (*RpmComponent, error) {
	c := NewRpmComponent(key)
	what := "rpm component " + key
	err := p.mapping(what, func(k events.Event) error {
		handled, err := c.parseKey(p, k)
		if handled || err != nil {
			return err
		}
		switch k.Value {
		case "repository":
			c.Repository, err = p.parseString()
		case "ref":
			c.Ref, err = p.parseString()
		case "cache":
			c.Cache, err = p.parseString()
		case "arches":
			c.Arches, err = p.parseStringSet("arches")
		case "multilib":
			c.Multilib, err = p.parseStringSet("multilib")
		case "buildroot":
			c.Buildroot, err = p.parseBool()
		case "srpm-buildroot":
			c.SrpmBuildroot, err = p.parseBool()
		default:
			err = p.skipUnknown(k, what)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RpmComponent) emit(e *emitter) {
	c.emitStart(e)
	e.keyValueIfSet("repository", c.Repository)
	e.keyValueIfSet("cache", c.Cache)
	e.keyValueIfSet("ref", c.Ref)
	if c.Buildroot {
		e.keyValue("buildroot", "true")
	}
	if c.SrpmBuildroot {
		e.keyValue("srpm-buildroot", "true")
	}
	c.emitBuildOrder(e)
	e.stringSetIfNonEmpty("arches", c.Arches, events.StyleFlow)
	e.stringSetIfNonEmpty("multilib", c.Multilib, events.StyleFlow)
	e.endMapping()
}

type ModuleComponent struct {
	componentBase
	Repository string
	Ref        string
}

func NewModuleComponent(key string) *ModuleComponent {
	return &ModuleComponent{componentBase: newComponentBase(key)}
}

func (c *ModuleComponent) Copy(key string) *ModuleComponent {
	out := *c
	out.componentBase = c.componentBase.copyTo(key)
	return &out
}

func (c *ModuleComponent) Equals(other *ModuleComponent) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.componentBase.equals(&other.componentBase) &&
		c.Repository == other.Repository &&
		c.Ref == other.Ref
}

func parseModuleComponent(p *parser, key string) (*ModuleComponent, error) {
	c := NewModuleComponent(key)
	what := "module component " + key
	err := p.mapping(what, func(k events.Event) error {
		handled, err := c.parseKey(p, k)
		if handled || err != nil {
			return err
		}
		switch k.Value {
		case "repository":
			c.Repository, err = p.parseString()
		case "ref":
			c.Ref, err = p.parseString()
		default:
			err = p.skipUnknown(k, what)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ModuleComponent) emit(e *emitter) {
	c.emitStart(e)
	e.keyValueIfSet("repository", c.Repository)
	e.keyValueIfSet("ref", c.Ref)
	c.emitBuildOrder(e)
	e.endMapping()
}

// components is the rpm and module component pair shared by streams and
// packager documents.
type components struct {
	RpmComponents    map[string]*RpmComponent
	ModuleComponents map[string]*ModuleComponent
}

func newComponents() components {
	return components{
		RpmComponents:    map[string]*RpmComponent{},
		ModuleComponents: map[string]*ModuleComponent{},
	}
}

// AddRpmComponent stores a copy of c under its key, replacing any
// component with the same key.
func (cs *components) AddRpmComponent(c *RpmComponent) {
	if cs.RpmComponents == nil {
		cs.RpmComponents = map[string]*RpmComponent{}
	}
	cs.RpmComponents[c.Key()] = c.Copy("")
}

func (cs *components) AddModuleComponent(c *ModuleComponent) {
	if cs.ModuleComponents == nil {
		cs.ModuleComponents = map[string]*ModuleComponent{}
	}
	cs.ModuleComponents[c.Key()] = c.Copy("")
}

func (cs *components) RemoveRpmComponent(key string) {
	delete(cs.RpmComponents, key)
}

func (cs *components) RemoveModuleComponent(key string) {
	delete(cs.ModuleComponents, key)
}

func (cs *components) copy() components {
	out := newComponents()
	for k, c := range cs.RpmComponents {
		out.RpmComponents[k] = c.Copy("")
	}
	for k, c := range cs.ModuleComponents {
		out.ModuleComponents[k] = c.Copy("")
	}
	return out
}

func (cs *components) equals(other *components) bool {
	if len(cs.RpmComponents) != len(other.RpmComponents) || len(cs.ModuleComponents) != len(other.ModuleComponents) {
		return false
	}
	for k, c := range cs.RpmComponents {
		if !c.Equals(other.RpmComponents[k]) {
			return false
		}
	}
	for k, c := range cs.ModuleComponents {
		if !c.Equals(other.ModuleComponents[k]) {
			return false
		}
	}
	return true
}

func (cs *components) all() []Component {
	out := make([]Component, 0, len(cs.RpmComponents)+len(cs.ModuleComponents))
	for _, c := range cs.RpmComponents {
		out = append(out, c)
	}
	for _, c := range cs.ModuleComponents {
		out = append(out, c)
	}
	return out
}

func (cs *components) parse(p *parser) error {
	return p.mapping("components", func(k events.Event) error {
		switch k.Value {
		case "rpms":
			return p.mapping("rpm components", func(name events.Event) error {
				c, err := parseRpmComponent(p, name.Value)
				if err != nil {
					return err
				}
				cs.RpmComponents[name.Value] = c
				return nil
			})
		case "modules":
			return p.mapping("module components", func(name events.Event) error {
				c, err := parseModuleComponent(p, name.Value)
				if err != nil {
					return err
				}
				cs.ModuleComponents[name.Value] = c
				return nil
			})
		}
		return p.skipUnknown(k, "components")
	})
}

func (cs *components) emit(e *emitter) {
	if len(cs.RpmComponents) == 0 && len(cs.ModuleComponents) == 0 {
		return
	}
	e.scalar("components")
	e.startMapping()
	if len(cs.RpmComponents) > 0 {
		e.scalar("rpms")
		e.startMapping()
		for _, k := range utils.SortedKeys(cs.RpmComponents) {
			cs.RpmComponents[k].emit(e)
		}
		e.endMapping()
	}
	if len(cs.ModuleComponents) > 0 {
		e.scalar("modules")
		e.startMapping()
		for _, k := range utils.SortedKeys(cs.ModuleComponents) {
			cs.ModuleComponents[k].emit(e)
		}
		e.endMapping()
	}
	e.endMapping()
}

// validate checks every component and the build ordering of the group.
func (cs *components) validate() error {
	usesBuildOrder := false
	usesBuildAfter := false
	for _, c := range cs.all() {
		if err := c.Validate(); err != nil {
			return err
		}
		base := c.common()
		if base.BuildOrder != 0 {
			usesBuildOrder = true
		}
		if !base.BuildAfter.IsEmpty() {
			usesBuildAfter = true
			for _, dep := range base.BuildAfter.Values() {
				_, rpm := cs.RpmComponents[dep]
				_, module := cs.ModuleComponents[dep]
				if !rpm && !module {
					return ce.NewValidation("Buildafter '%s' not found in components list", dep)
				}
			}
		}
	}
	if usesBuildOrder && usesBuildAfter {
		return ce.NewValidation("Cannot mix buildorder and buildafter in the same stream")
	}
	return nil
}

// validateArches requires every rpm component arch to appear in arches
// when arches is not empty.
func (cs *components) validateArches(arches StringSet) error {
	if arches.IsEmpty() {
		return nil
	}
	for _, key := range utils.SortedKeys(cs.RpmComponents) {
		for _, arch := range cs.RpmComponents[key].Arches.Values() {
			if !arches.Contains(arch) {
				return ce.NewArchConsistency("Component rpm '%s' arch '%s' not in module buildopts.arches", key, arch)
			}
		}
	}
	return nil
}
