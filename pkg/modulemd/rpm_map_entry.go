package modulemd

import (
	"fmt"
	"strconv"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/content-services/modulemd-backend/pkg/utils"
	"github.com/pkg/errors"
)

// RpmMapEntry describes one artifact of the rpm-map by its NEVRA parts.
type RpmMapEntry struct {
	Name    string
	Epoch   uint64
	Version string
	Release string
	Arch    string
}

func NewRpmMapEntry(name string, epoch uint64, version string, release string, arch string) *RpmMapEntry {
	return &RpmMapEntry{Name: name, Epoch: epoch, Version: version, Release: release, Arch: arch}
}

// Nevra is name-epoch:version-release.arch, or empty when a part is unset.
func (r *RpmMapEntry) Nevra() string {
	if r.Name == "" || r.Version == "" || r.Release == "" || r.Arch == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d:%s-%s.%s", r.Name, r.Epoch, r.Version, r.Release, r.Arch)
}

func (r *RpmMapEntry) Copy() *RpmMapEntry {
	out := *r
	return &out
}

func (r *RpmMapEntry) Equals(other *RpmMapEntry) bool {
	if r == nil || other == nil {
		return r == other
	}
	return *r == *other
}

func (r *RpmMapEntry) Validate() error {
	switch {
	case r.Name == "":
		return ce.NewValidation("Missing name attribute")
	case r.Version == "":
		return ce.NewValidation("Missing version attribute")
	case r.Release == "":
		return ce.NewValidation("Missing release attribute")
	case r.Arch == "":
		return ce.NewValidation("Missing arch attribute")
	}
	return nil
}

func parseRpmMapEntry(p *parser) (*RpmMapEntry, error) {
	r := &RpmMapEntry{}
	var nevra string
	haveEpoch := false
	haveNevra := false
	err := p.mapping("rpm-map entry", func(k events.Event) error {
		var err error
		switch k.Value {
		case "name":
			r.Name, err = p.parseString()
		case "epoch":
			r.Epoch, err = p.parseUint64()
			haveEpoch = true
		case "version":
			r.Version, err = p.parseString()
		case "release":
			r.Release, err = p.parseString()
		case "arch":
			r.Arch, err = p.parseString()
		case "nevra":
			nevra, err = p.parseString()
			haveNevra = true
		default:
			err = p.skipUnknown(k, "rpm-map entry")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = r.Validate(); err != nil {
		return nil, errors.Wrap(err, "Validation of entry failed")
	}
	if !haveEpoch {
		return nil, ce.NewMissingRequired("Missing 'epoch' in rpm-map entry")
	}
	if !haveNevra {
		return nil, ce.NewMissingRequired("Missing 'nevra' in rpm-map entry")
	}
	if nevra != r.Nevra() {
		return nil, ce.NewInconsistentData("'nevra' field (%s) differs from exploded version (%s)", nevra, r.Nevra())
	}
	return r, nil
}

func (r *RpmMapEntry) emit(e *emitter) {
	if err := r.Validate(); err != nil {
		e.fail(errors.Wrap(err, "rpm-map entry failed to validate"))
		return
	}
	e.startMapping()
	e.keyValue("name", r.Name)
	e.keyValue("epoch", strconv.FormatUint(r.Epoch, 10))
	e.keyValue("version", r.Version)
	e.keyValue("release", r.Release)
	e.keyValue("arch", r.Arch)
	e.keyValue("nevra", r.Nevra())
	e.endMapping()
}

// RpmMap maps a digest algorithm to checksums to the entry they identify.
type RpmMap map[string]map[string]*RpmMapEntry

// Add stores a copy of entry under digest and checksum.
func (m RpmMap) Add(digest string, checksum string, entry *RpmMapEntry) {
	if m[digest] == nil {
		m[digest] = map[string]*RpmMapEntry{}
	}
	m[digest][checksum] = entry.Copy()
}

func (m RpmMap) Lookup(digest string, checksum string) *RpmMapEntry {
	return m[digest][checksum]
}

func (m RpmMap) Copy() RpmMap {
	out := RpmMap{}
	for digest, byChecksum := range m {
		for checksum, entry := range byChecksum {
			out.Add(digest, checksum, entry)
		}
	}
	return out
}

func (m RpmMap) Equals(other RpmMap) bool {
	return utils.MapsEqual(m, other, func(a, b map[string]*RpmMapEntry) bool {
		return utils.MapsEqual(a, b, func(x, y *RpmMapEntry) bool { return x.Equals(y) })
	})
}

func parseRpmMap(p *parser) (RpmMap, error) {
	m := RpmMap{}
	err := p.mapping("rpm-map", func(digest events.Event) error {
		return p.mapping("rpm-map digest", func(checksum events.Event) error {
			entry, err := parseRpmMapEntry(p)
			if err != nil {
				return err
			}
			m.Add(digest.Value, checksum.Value, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m RpmMap) emit(e *emitter) {
	e.scalar("rpm-map")
	e.startMapping()
	for _, digest := range utils.SortedKeys(m) {
		e.scalar(digest)
		e.startMapping()
		for _, checksum := range utils.SortedKeys(m[digest]) {
			e.scalar(checksum)
			m[digest][checksum].emit(e)
		}
		e.endMapping()
	}
	e.endMapping()
}
