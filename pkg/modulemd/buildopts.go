package modulemd

import (
	"github.com/content-services/modulemd-backend/pkg/events"
)

// Buildopts are build-time options for a stream or build configuration.
type Buildopts struct {
	// RpmMacros is the raw text of an rpm macros file.
	RpmMacros    string
	RpmWhitelist StringSet
	Arches       StringSet
}

func NewBuildopts() *Buildopts {
	return &Buildopts{}
}

func (b *Buildopts) Copy() *Buildopts {
	if b == nil {
		return nil
	}
	return &Buildopts{
		RpmMacros:    b.RpmMacros,
		RpmWhitelist: b.RpmWhitelist.Copy(),
		Arches:       b.Arches.Copy(),
	}
}

func (b *Buildopts) Equals(other *Buildopts) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.RpmMacros == other.RpmMacros &&
		b.RpmWhitelist.Equal(other.RpmWhitelist) &&
		b.Arches.Equal(other.Arches)
}

func parseBuildopts(p *parser) (*Buildopts, error) {
	b := NewBuildopts()
	err := p.mapping("buildopts", func(k events.Event) error {
		var err error
		switch k.Value {
		case "rpms":
			err = p.mapping("buildopts rpms", func(rk events.Event) error {
				var err error
				switch rk.Value {
				case "macros":
					b.RpmMacros, err = p.parseString()
				case "whitelist":
					b.RpmWhitelist, err = p.parseStringSet("buildopts whitelist")
				default:
					err = p.skipUnknown(rk, "buildopts rpms")
				}
				return err
			})
		case "arches":
			b.Arches, err = p.parseStringSet("buildopts arches")
		default:
			err = p.skipUnknown(k, "buildopts")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// emit writes the buildopts mapping. The caller writes the key.
func (b *Buildopts) emit(e *emitter) {
	e.startMapping()
	if b.RpmMacros != "" || !b.RpmWhitelist.IsEmpty() {
		e.scalar("rpms")
		e.startMapping()
		if b.RpmMacros != "" {
			e.styledKeyValue("macros", b.RpmMacros, events.StyleFolded)
		}
		e.stringSetIfNonEmpty("whitelist", b.RpmWhitelist, events.StyleAny)
		e.endMapping()
	}
	e.stringSetIfNonEmpty("arches", b.Arches, events.StyleFlow)
	e.endMapping()
}

func emitBuildoptsIfSet(e *emitter, b *Buildopts) {
	if b == nil {
		return
	}
	e.scalar("buildopts")
	b.emit(e)
}
