package model

// Span is a byte range within a raw map file buffer.
type Span struct {
	// Offset is the absolute byte position from the start of the file.
	Offset int64 `json:"offset"`

	// Length is the number of bytes covered.
	Length int `json:"length"`
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int64 {
	return s.Offset + int64(s.Length)
}

// Field is one key/value line of a map object, kept in file order.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MapObject is one placed object from the [Objects] section of a map file.
type MapObject struct {
	// ProtoID is the prototype the object references.
	ProtoID uint16 `json:"proto_id"`

	// Category is the category recorded by the MapObjType line.
	Category Category `json:"category"`

	// CategoryText is the literal MapObjType value as written in the file.
	CategoryText string `json:"category_text"`

	// CategorySpan locates CategoryText in the raw file bytes.
	// Overwriting exactly this span changes the recorded category without
	// altering the file length.
	CategorySpan Span `json:"category_span"`

	// Line is the 1-based line number of the MapObjType line.
	Line int `json:"line"`

	// Fields holds every key/value line of the object, including
	// MapObjType and ProtoId, in file order.
	Fields []Field `json:"fields"`
}

// MapDocument is the parsed form of a single map file.
type MapDocument struct {
	// Raw is the buffer the document was parsed from. Spans refer to it.
	Raw []byte `json:"-"`

	// Header holds the [Header] section key/value lines.
	Header []Field `json:"header,omitempty"`

	// Tiles is the number of lines in the [Tiles] section.
	Tiles int `json:"tiles"`

	// Objects are the placed objects in file order.
	Objects []MapObject `json:"objects"`
}
