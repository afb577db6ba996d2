package model

import "fmt"

// ChangeRecord is a single in-place correction of a category field.
type ChangeRecord struct {
	// Offset is the absolute byte position in the file.
	Offset int64 `json:"offset"`

	// Length is the number of bytes replaced. Always 1 for category fields.
	Length int `json:"length"`

	// Value is the ASCII digit written at Offset.
	Value byte `json:"value"`

	// Previous is the byte found at Offset when the file was read.
	Previous byte `json:"previous"`

	// ProtoID and Line identify the object being corrected in messages.
	ProtoID uint16 `json:"proto_id"`
	Line    int    `json:"line"`

	// From and To are the recorded and corrected categories.
	From Category `json:"from"`
	To   Category `json:"to"`
}

// NewChangeRecord builds the correction of obj's category field to the
// given category and validates it.
func NewChangeRecord(obj MapObject, raw []byte, to Category) (ChangeRecord, error) {
	code, ok := to.Code()
	if !ok {
		return ChangeRecord{}, fmt.Errorf("%w: line %d: category %s has no digit code",
			ErrInvariantViolation, obj.Line, to)
	}
	rec := ChangeRecord{
		Offset:  obj.CategorySpan.Offset,
		Length:  obj.CategorySpan.Length,
		Value:   '0' + code,
		ProtoID: obj.ProtoID,
		Line:    obj.Line,
		From:    obj.Category,
		To:      to,
	}
	if obj.CategorySpan.Offset >= 0 && obj.CategorySpan.Offset < int64(len(raw)) {
		rec.Previous = raw[obj.CategorySpan.Offset]
	}
	if err := rec.Validate(); err != nil {
		return ChangeRecord{}, err
	}
	return rec, nil
}

// Validate checks the structural guarantees of the category encoding:
// a change replaces exactly one byte with an ASCII digit. A failure means
// the parse or the category mapping is broken.
func (c ChangeRecord) Validate() error {
	if c.Length != 1 {
		return fmt.Errorf("%w: line %d: category field at offset %d is %d bytes long, want 1",
			ErrInvariantViolation, c.Line, c.Offset, c.Length)
	}
	if c.Value < '0' || c.Value > '9' {
		return fmt.Errorf("%w: line %d: value %q at offset %d is not a digit",
			ErrInvariantViolation, c.Line, c.Value, c.Offset)
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: line %d: negative offset %d",
			ErrInvariantViolation, c.Line, c.Offset)
	}
	return nil
}

// String returns a short human-readable description of the change.
func (c ChangeRecord) String() string {
	return fmt.Sprintf("line %d proto %d: %s -> %s (offset %d)",
		c.Line, c.ProtoID, c.From, c.To, c.Offset)
}
