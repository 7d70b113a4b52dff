package modulemd

import (
	"time"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
)

const obsoletesTimeLayout = "2006-01-02T15:04Z"

// Obsoletes announces that a module stream is end of life or replaced by
// another stream. A reset cancels earlier announcements.
type Obsoletes struct {
	Modified time.Time
	Reset    bool
	Module   string
	Stream   string
	Context  string
	EOLDate  *time.Time
	Message  string

	ObsoletedByModule string
	ObsoletedByStream string
}

func NewObsoletes(modified time.Time, module string, stream string, message string) *Obsoletes {
	return &Obsoletes{
		Modified: modified.UTC().Truncate(time.Minute),
		Module:   module,
		Stream:   stream,
		Message:  message,
	}
}

func (o *Obsoletes) DocumentType() string {
	return DocTypeObsoletes
}

func (o *Obsoletes) MdVersion() uint64 {
	return 1
}

func (o *Obsoletes) SetEOLDate(date time.Time) {
	eol := date.UTC().Truncate(time.Minute)
	o.EOLDate = &eol
}

// IsActive reports whether the EOL date has passed at now. Obsoletes
// without an EOL date are active immediately.
func (o *Obsoletes) IsActive(now time.Time) bool {
	return o.EOLDate == nil || !now.UTC().Before(*o.EOLDate)
}

func resolvedObsoletes(o *Obsoletes) *Obsoletes {
	if o == nil || o.Reset {
		return nil
	}
	return o
}

func (o *Obsoletes) Copy() *Obsoletes {
	if o == nil {
		return nil
	}
	out := *o
	if o.EOLDate != nil {
		eol := *o.EOLDate
		out.EOLDate = &eol
	}
	return &out
}

func (o *Obsoletes) Equals(other *Obsoletes) bool {
	if o == nil || other == nil {
		return o == other
	}
	eolEqual := (o.EOLDate == nil) == (other.EOLDate == nil)
	if eolEqual && o.EOLDate != nil {
		eolEqual = o.EOLDate.Equal(*other.EOLDate)
	}
	return o.Modified.Equal(other.Modified) &&
		o.Reset == other.Reset &&
		o.Module == other.Module &&
		o.Stream == other.Stream &&
		o.Context == other.Context &&
		eolEqual &&
		o.Message == other.Message &&
		o.ObsoletedByModule == other.ObsoletedByModule &&
		o.ObsoletedByStream == other.ObsoletedByStream
}

func (o *Obsoletes) Validate() error {
	if o.Modified.IsZero() {
		return ce.NewValidation("Obsoletes modified is empty.")
	}
	if o.Module == "" {
		return ce.NewValidation("Obsoletes module name is unset.")
	}
	if o.Stream == "" {
		return ce.NewValidation("Obsoletes stream is unset.")
	}
	if o.Message == "" {
		return ce.NewValidation("Obsoletes message is unset.")
	}
	if o.Reset && o.EOLDate != nil {
		return ce.NewValidation("Obsoletes cannot have both eol_date and reset attributes set.")
	}
	if o.Reset && (o.ObsoletedByModule != "" || o.ObsoletedByStream != "") {
		return ce.NewValidation("Obsoletes cannot have both obsoleted_by and reset attributes set.")
	}
	if (o.ObsoletedByModule == "") != (o.ObsoletedByStream == "") {
		return ce.NewValidation("Obsoletes obsoleted by module name and module stream have to be set together.")
	}
	return nil
}

func (p *parser) parseTimestamp() (time.Time, error) {
	ev, err := p.next()
	if err != nil {
		return time.Time{}, err
	}
	if ev.Type != events.Scalar {
		return time.Time{}, malformed(ev, "Timestamp was not a scalar")
	}
	ts, err := time.Parse(obsoletesTimeLayout, ev.Value)
	if err != nil {
		return time.Time{}, malformed(ev, "Timestamp not in the form YYYY-MM-DDTHH:MMZ: %s", ev.Value)
	}
	return ts, nil
}

// parseObsoletes reads the data body and validates it, since an Obsoletes
// without its mandatory fields has no meaning.
func parseObsoletes(p *parser) (*Obsoletes, error) {
	o := &Obsoletes{}
	err := p.mapping("Obsoletes", func(key events.Event) error {
		var err error
		switch key.Value {
		case "modified":
			o.Modified, err = p.parseTimestamp()
		case "reset":
			o.Reset, err = p.parseBool()
		case "module":
			o.Module, err = p.parseString()
		case "stream":
			o.Stream, err = p.parseString()
		case "context":
			o.Context, err = p.parseString()
		case "eol_date":
			var eol time.Time
			if eol, err = p.parseTimestamp(); err == nil {
				o.EOLDate = &eol
			}
		case "message":
			o.Message, err = p.parseString()
		case "obsoleted_by":
			err = p.mapping("obsoleted_by", func(k events.Event) error {
				var err error
				switch k.Value {
				case "module":
					o.ObsoletedByModule, err = p.parseString()
				case "stream":
					o.ObsoletedByStream, err = p.parseString()
				default:
					err = p.skipUnknown(k, "obsoleted_by")
				}
				return err
			})
		default:
			err = p.skipUnknown(key, "Obsoletes")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Obsoletes) emit(e *emitter) {
	e.startDocument(o.DocumentType(), o.MdVersion())
	e.keyValue("modified", o.Modified.UTC().Format(obsoletesTimeLayout))
	if o.Reset {
		e.keyValue("reset", "true")
	}
	e.keyValue("module", o.Module)
	e.styledKeyValue("stream", o.Stream, events.StyleDoubleQuoted)
	e.keyValueIfSet("context", o.Context)
	if o.EOLDate != nil {
		e.keyValue("eol_date", o.EOLDate.UTC().Format(obsoletesTimeLayout))
	}
	e.keyValue("message", o.Message)
	if o.ObsoletedByModule != "" && o.ObsoletedByStream != "" {
		e.scalar("obsoleted_by")
		e.startMapping()
		e.keyValue("module", o.ObsoletedByModule)
		e.styledKeyValue("stream", o.ObsoletedByStream, events.StyleDoubleQuoted)
		e.endMapping()
	}
	e.endDocument()
}
