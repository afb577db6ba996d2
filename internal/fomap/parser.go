package fomap

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Section names and the keys the parser interprets.
const (
	SectionHeader  = "Header"
	SectionTiles   = "Tiles"
	SectionObjects = "Objects"

	KeyMapObjType = "MapObjType"
	KeyProtoID    = "ProtoId"
)

// parser holds the state of a single Parse call.
type parser struct {
	raw     []byte
	doc     *model.MapDocument
	section string

	// current is the object being accumulated in [Objects].
	current    *model.MapObject
	hasProtoID bool
}

// Parse parses raw map file content.
//
// It consumes as much of the input as the grammar allows and returns the
// unconsumed remainder, starting at the first line it could not interpret
// (an unknown section, or a line that is not a key/value pair). A caller
// that requires the whole file to be understood should use ParseStrict.
//
// The returned document refers to raw; raw must not be modified while the
// document is in use.
func Parse(raw []byte) (*model.MapDocument, []byte, error) {
	p := &parser{
		raw: raw,
		doc: &model.MapDocument{Raw: raw},
	}

	pos, lineNo := 0, 0
	for pos < len(raw) {
		lineEnd, next := len(raw), len(raw)
		if i := bytes.IndexByte(raw[pos:], '\n'); i >= 0 {
			lineEnd, next = pos+i, pos+i+1
		}
		contentEnd := lineEnd
		if contentEnd > pos && raw[contentEnd-1] == '\r' {
			contentEnd--
		}
		lineNo++

		stop, err := p.line(pos, contentEnd, lineNo)
		if err != nil {
			return nil, nil, err
		}
		if stop {
			if err := p.finishObject(); err != nil {
				return nil, nil, err
			}
			return p.doc, raw[pos:], nil
		}
		pos = next
	}

	if err := p.finishObject(); err != nil {
		return nil, nil, err
	}
	return p.doc, nil, nil
}

// ParseStrict parses raw and fails with ErrTrailingData if any input is
// left unconsumed.
func ParseStrict(raw []byte) (*model.MapDocument, error) {
	doc, rest, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		consumed := raw[:len(raw)-len(rest)]
		line := bytes.Count(consumed, []byte{'\n'}) + 1
		return nil, fmt.Errorf("%w at line %d: %q", ErrTrailingData, line, snippet(rest))
	}
	return doc, nil
}

// line handles one line spanning raw[start:end] (line terminator excluded).
// It reports stop=true when the line cannot be interpreted.
func (p *parser) line(start, end, lineNo int) (bool, error) {
	content := p.raw[start:end]
	trimmed := bytes.TrimSpace(content)

	switch {
	case len(trimmed) == 0:
		if p.section == SectionObjects {
			return false, p.finishObject()
		}
		return false, nil
	case trimmed[0] == '#' || trimmed[0] == ';':
		return false, nil
	case trimmed[0] == '[':
		name, ok := sectionName(trimmed)
		if !ok {
			return true, nil
		}
		if err := p.finishObject(); err != nil {
			return false, err
		}
		p.section = name
		return false, nil
	case p.section == "":
		return true, nil
	}

	keyStart := start + (len(content) - len(bytes.TrimLeft(content, " \t")))
	keyEnd := keyStart
	for keyEnd < end && isKeyByte(p.raw[keyEnd], keyEnd == keyStart) {
		keyEnd++
	}
	if keyEnd == keyStart || (keyEnd < end && !isSpace(p.raw[keyEnd])) {
		return true, nil
	}

	valueStart := keyEnd
	for valueStart < end && isSpace(p.raw[valueStart]) {
		valueStart++
	}
	valueEnd := end
	for valueEnd > valueStart && isSpace(p.raw[valueEnd-1]) {
		valueEnd--
	}

	field := model.Field{
		Key:   string(p.raw[keyStart:keyEnd]),
		Value: string(p.raw[valueStart:valueEnd]),
	}

	switch p.section {
	case SectionHeader:
		p.doc.Header = append(p.doc.Header, field)
	case SectionTiles:
		p.doc.Tiles++
	case SectionObjects:
		return false, p.objectField(field, valueStart, valueEnd, lineNo)
	}
	return false, nil
}

// objectField adds a key/value line to the current object, starting a new
// object on MapObjType.
func (p *parser) objectField(field model.Field, valueStart, valueEnd, lineNo int) error {
	if field.Key == KeyMapObjType {
		if err := p.finishObject(); err != nil {
			return err
		}
		p.current = &model.MapObject{
			Category:     model.ParseCategory(field.Value),
			CategoryText: field.Value,
			CategorySpan: model.Span{Offset: int64(valueStart), Length: valueEnd - valueStart},
			Line:         lineNo,
			Fields:       []model.Field{field},
		}
		p.hasProtoID = false
		return nil
	}

	if p.current == nil {
		return fmt.Errorf("%w: line %d: %s outside of an object", ErrMalformedMap, lineNo, field.Key)
	}

	if field.Key == KeyProtoID {
		if p.hasProtoID {
			return fmt.Errorf("%w: line %d: duplicate %s", ErrMalformedMap, lineNo, KeyProtoID)
		}
		id, err := strconv.ParseUint(field.Value, 10, 16)
		if err != nil {
			return fmt.Errorf("%w: line %d: %s %q: %w", ErrMalformedMap, lineNo, KeyProtoID, field.Value, err)
		}
		p.current.ProtoID = uint16(id)
		p.hasProtoID = true
	}

	p.current.Fields = append(p.current.Fields, field)
	return nil
}

// finishObject appends the current object to the document.
func (p *parser) finishObject() error {
	if p.current == nil {
		return nil
	}
	if !p.hasProtoID {
		return fmt.Errorf("%w: line %d: object without %s", ErrMalformedMap, p.current.Line, KeyProtoID)
	}
	p.doc.Objects = append(p.doc.Objects, *p.current)
	p.current = nil
	p.hasProtoID = false
	return nil
}

// sectionName returns the name of a known section header line.
func sectionName(line []byte) (string, bool) {
	if len(line) < 2 || line[len(line)-1] != ']' {
		return "", false
	}
	switch name := string(line[1 : len(line)-1]); name {
	case SectionHeader, SectionTiles, SectionObjects:
		return name, true
	default:
		return "", false
	}
}

func isKeyByte(b byte, first bool) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		return true
	case b >= '0' && b <= '9':
		return !first
	default:
		return false
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// snippet returns the first line of b, shortened for error messages.
func snippet(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	b = bytes.TrimRight(b, "\r")
	const maxLen = 40
	if len(b) > maxLen {
		return string(b[:maxLen-3]) + "..."
	}
	return string(b)
}
