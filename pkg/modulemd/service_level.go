package modulemd

import (
	"time"

	"github.com/content-services/modulemd-backend/pkg/events"
)

// ServiceLevel is a named support period of a stream.
type ServiceLevel struct {
	name string
	EOL  *time.Time
}

func NewServiceLevel(name string) *ServiceLevel {
	return &ServiceLevel{name: name}
}

func (s *ServiceLevel) Name() string {
	return s.name
}

// SetEOL sets the end of life date, dropping any time of day.
func (s *ServiceLevel) SetEOL(date time.Time) {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s.EOL = &d
}

func (s *ServiceLevel) EOLString() string {
	if s.EOL == nil {
		return ""
	}
	return s.EOL.Format(dateLayout)
}

func (s *ServiceLevel) Copy() *ServiceLevel {
	out := &ServiceLevel{name: s.name}
	if s.EOL != nil {
		eol := *s.EOL
		out.EOL = &eol
	}
	return out
}

func (s *ServiceLevel) Equals(other *ServiceLevel) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.name == other.name && s.EOLString() == other.EOLString()
}

func parseServiceLevel(p *parser, name string) (*ServiceLevel, error) {
	s := NewServiceLevel(name)
	err := p.mapping("service level "+name, func(k events.Event) error {
		if k.Value != "eol" {
			return p.skipUnknown(k, "service level "+name)
		}
		eol, err := p.parseDate()
		if err != nil {
			return err
		}
		s.SetEOL(eol)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ServiceLevel) emit(e *emitter) {
	e.scalar(s.name)
	e.startMapping()
	e.keyValueIfSet("eol", s.EOLString())
	e.endMapping()
}
