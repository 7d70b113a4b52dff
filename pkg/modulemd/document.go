package modulemd

import (
	"bytes"
	"io"
	"os"
	"strings"

	ce "github.com/content-services/modulemd-backend/pkg/errors"
	"github.com/content-services/modulemd-backend/pkg/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SubdocumentFailure records a document of a stream that could not be read.
type SubdocumentFailure struct {
	DocType string
	Version uint64
	Line    int
	Err     error
}

func (f SubdocumentFailure) Error() string {
	return f.Err.Error()
}

// Index is everything read from one YAML stream, in stream order.
type Index struct {
	Documents []Document
	Failures  []SubdocumentFailure
}

// ModuleStreams returns the module stream documents of the index.
func (i *Index) ModuleStreams() []ModuleStream {
	var streams []ModuleStream
	for _, doc := range i.Documents {
		if s, ok := doc.(ModuleStream); ok {
			streams = append(streams, s)
		}
	}
	return streams
}

func (i *Index) Packagers() []*PackagerV3 {
	var packagers []*PackagerV3
	for _, doc := range i.Documents {
		if pk, ok := doc.(*PackagerV3); ok {
			packagers = append(packagers, pk)
		}
	}
	return packagers
}

func (i *Index) Obsoletes() []*Obsoletes {
	var obsoletes []*Obsoletes
	for _, doc := range i.Documents {
		if o, ok := doc.(*Obsoletes); ok {
			obsoletes = append(obsoletes, o)
		}
	}
	return obsoletes
}

func (i *Index) Defaults() []*Defaults {
	var defaults []*Defaults
	for _, doc := range i.Documents {
		if d, ok := doc.(*Defaults); ok {
			defaults = append(defaults, d)
		}
	}
	return defaults
}

func (i *Index) Translations() []*Translation {
	var translations []*Translation
	for _, doc := range i.Documents {
		if t, ok := doc.(*Translation); ok {
			translations = append(translations, t)
		}
	}
	return translations
}

// AssociateObsoletes links every V2 and V3 stream to the most recently
// modified Obsoletes naming its module and stream. An Obsoletes without a
// context applies to every context.
func (i *Index) AssociateObsoletes() {
	obsoletes := i.Obsoletes()
	for _, s := range i.ModuleStreams() {
		base := s.common()
		var newest *Obsoletes
		for _, o := range obsoletes {
			if o.Module != base.ModuleName || o.Stream != base.StreamName {
				continue
			}
			if o.Context != "" && o.Context != base.Context {
				continue
			}
			if newest == nil || o.Modified.After(newest.Modified) {
				newest = o
			}
		}
		if newest == nil {
			continue
		}
		switch stream := s.(type) {
		case *ModuleStreamV2:
			stream.AssociateObsoletes(newest)
		case *ModuleStreamV3:
			stream.AssociateObsoletes(newest)
		}
	}
}

// ReadDocuments reads every document of src. A document that cannot be
// parsed becomes a failure and the remaining documents are still read. Only
// an unreadable YAML stream aborts.
func ReadDocuments(src events.Source, strict bool) (*Index, error) {
	index := &Index{}
	for {
		ev, err := src.Next()
		if err != nil {
			return nil, err
		}
		switch ev.Type {
		case events.StreamEnd:
			return index, nil
		case events.DocumentStart:
		default:
			return nil, malformed(ev, "Expected a document start, got %s", ev.Type)
		}

		body, err := events.Record(src)
		if err != nil {
			return nil, err
		}
		end, err := src.Next()
		if err != nil {
			return nil, err
		}
		if end.Type != events.DocumentEnd {
			return nil, malformed(end, "Expected a document end, got %s", end.Type)
		}

		header, err := readSubdocument(body, strict)
		if err == nil {
			var doc Document
			doc, err = header.parse(strict)
			if err == nil {
				index.Documents = append(index.Documents, doc)
				continue
			}
		}
		failure := SubdocumentFailure{DocType: header.docType, Version: header.version, Line: body[0].Line, Err: err}
		log.Warn().
			Err(err).
			Str("document", failure.DocType).
			Uint64("version", failure.Version).
			Int("line", failure.Line).
			Msg("Failed to read subdocument")
		index.Failures = append(index.Failures, failure)
	}
}

func ReadString(yaml string, strict bool) (*Index, error) {
	return ReadDocuments(events.NewYAMLSource(strings.NewReader(yaml)), strict)
}

func ReadBytes(yaml []byte, strict bool) (*Index, error) {
	return ReadDocuments(events.NewYAMLSource(bytes.NewReader(yaml)), strict)
}

func ReadFile(path string, strict bool) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()
	return ReadDocuments(events.NewYAMLSource(f), strict)
}

type subdocument struct {
	docType    string
	version    uint64
	hasVersion bool
	data       []events.Event
}

// readSubdocument splits the document, version and data keys of one
// recorded document.
func readSubdocument(body []events.Event, strict bool) (subdocument, error) {
	var sub subdocument
	p := newParser(events.NewReplay(body), strict)
	err := p.mapping("document", func(key events.Event) error {
		var err error
		switch key.Value {
		case "document":
			if sub.docType != "" {
				return malformed(key, "Document type encountered twice.")
			}
			sub.docType, err = p.parseString()
		case "version":
			if sub.hasVersion {
				return malformed(key, "Document version encountered twice.")
			}
			sub.version, err = p.parseUint64()
			sub.hasVersion = err == nil
		case "data":
			if sub.data != nil {
				return malformed(key, "Data section encountered twice.")
			}
			sub.data, err = events.Record(p.src)
		default:
			err = p.skipUnknown(key, "document")
		}
		return err
	})
	if err != nil {
		return sub, err
	}
	if sub.docType == "" {
		return sub, ce.NewMissingRequired("No document type specified")
	}
	if !sub.hasVersion || sub.version == 0 {
		return sub, ce.NewMissingRequired("No document version specified")
	}
	if sub.data == nil {
		return sub, ce.NewMissingRequired("No data section provided")
	}
	return sub, nil
}

func (sub subdocument) parse(strict bool) (Document, error) {
	p := newParser(events.NewReplay(sub.data), strict)
	switch {
	case sub.docType == DocTypeModuleStream && sub.version == 1:
		return parseModuleStreamV1(p)
	case sub.docType == DocTypeModuleStream && sub.version == 2:
		return parseModuleStreamV2(p, false)
	case sub.docType == DocTypePackager && sub.version == 2:
		return parseModuleStreamV2(p, true)
	case sub.docType == DocTypeModuleStream && sub.version == 3:
		return parseModuleStreamV3(p)
	case sub.docType == DocTypePackager && sub.version == 3:
		return parsePackagerV3(p)
	case sub.docType == DocTypeObsoletes && sub.version == 1:
		return parseObsoletes(p)
	case sub.docType == DocTypeDefaults && sub.version == 1:
		return parseDefaults(p)
	case sub.docType == DocTypeTranslations && sub.version == 1:
		return parseTranslation(p)
	}
	return nil, ce.NewUnknownDocument("Unknown document type %s version %d", sub.docType, sub.version)
}

// EmitDocuments validates and writes docs in order, stopping at the first
// failure.
func EmitDocuments(sink events.Sink, docs ...Document) error {
	e := newEmitter(sink)
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return errors.Wrapf(err, "%s version %d failed to validate", doc.DocumentType(), doc.MdVersion())
		}
		doc.emit(e)
		if e.err != nil {
			return e.err
		}
	}
	e.emit(events.Event{Type: events.StreamEnd})
	return e.err
}

// EmitTo writes docs as YAML to w.
func EmitTo(w io.Writer, docs ...Document) error {
	return EmitDocuments(events.NewYAMLSink(w), docs...)
}

// EmitString renders docs as YAML text.
func EmitString(docs ...Document) (string, error) {
	var buf bytes.Buffer
	if err := EmitTo(&buf, docs...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Equal compares two documents of the same type.
func Equal(a Document, b Document) bool {
	switch x := a.(type) {
	case *ModuleStreamV1:
		y, ok := b.(*ModuleStreamV1)
		return ok && x.Equals(y)
	case *ModuleStreamV2:
		y, ok := b.(*ModuleStreamV2)
		return ok && x.Equals(y)
	case *ModuleStreamV3:
		y, ok := b.(*ModuleStreamV3)
		return ok && x.Equals(y)
	case *PackagerV3:
		y, ok := b.(*PackagerV3)
		return ok && x.Equals(y)
	case *Obsoletes:
		y, ok := b.(*Obsoletes)
		return ok && x.Equals(y)
	case *Defaults:
		y, ok := b.(*Defaults)
		return ok && x.Equals(y)
	case *Translation:
		y, ok := b.(*Translation)
		return ok && x.Equals(y)
	}
	return false
}
