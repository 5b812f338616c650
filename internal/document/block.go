// Package document implements the block-structured note model: an ordered
// sequence of typed blocks where list blocks hold renumberable bullet points.
//
// Every operation returns a new value and leaves its receiver untouched, so
// editing state can be snapshotted and compared without copying by hand.
package document

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrUnknownKind is returned when a block type tag is not recognised.
var ErrUnknownKind = errors.New("unknown block type")

// Kind is the block type tag used on the wire.
type Kind string

// Block kinds.
const (
	KindHeading     Kind = "heading"
	KindParagraph   Kind = "paragraph"
	KindBulletList  Kind = "bulletList"
	KindNumericList Kind = "numericList"
)

// Kinds lists every block kind in menu order.
var Kinds = []Kind{KindHeading, KindParagraph, KindBulletList, KindNumericList}

// Valid reports whether k is a known block kind.
func (k Kind) Valid() bool {
	switch k {
	case KindHeading, KindParagraph, KindBulletList, KindNumericList:
		return true
	}
	return false
}

// Label returns the human-readable name shown in the block type selector.
func (k Kind) Label() string {
	switch k {
	case KindHeading:
		return "Heading"
	case KindParagraph:
		return "Paragraph"
	case KindBulletList:
		return "Bullet List"
	case KindNumericList:
		return "Numeric List"
	default:
		return "Select Type"
	}
}

// Block is one unit of document content. The concrete types are Heading,
// Paragraph and BulletList.
type Block interface {
	BlockID() int
	Kind() Kind
	// Height is the layout hint reported by the presentation layer.
	Height() float64
	Validate() error

	withID(id int) Block
	withHeight(h float64) Block
}

// NewBlock returns an empty block of the given kind with a zero id.
func NewBlock(kind Kind) (Block, error) {
	switch kind {
	case KindHeading:
		return Heading{}, nil
	case KindParagraph:
		return Paragraph{}, nil
	case KindBulletList:
		return NewBulletList(false), nil
	case KindNumericList:
		return NewBulletList(true), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Heading is a single line of title text.
type Heading struct {
	ID              int
	Text            string
	TextInputHeight float64
}

func (b Heading) BlockID() int               { return b.ID }
func (b Heading) Kind() Kind                 { return KindHeading }
func (b Heading) Height() float64            { return b.TextInputHeight }
func (b Heading) withID(id int) Block        { b.ID = id; return b }
func (b Heading) withHeight(h float64) Block { b.TextInputHeight = h; return b }

// Validate implements validation.Validatable.
func (b Heading) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required, validation.Min(1)),
	)
}

// Paragraph is free-form body text.
type Paragraph struct {
	ID              int
	Text            string
	TextInputHeight float64
}

func (b Paragraph) BlockID() int               { return b.ID }
func (b Paragraph) Kind() Kind                 { return KindParagraph }
func (b Paragraph) Height() float64            { return b.TextInputHeight }
func (b Paragraph) withID(id int) Block        { b.ID = id; return b }
func (b Paragraph) withHeight(h float64) Block { b.TextInputHeight = h; return b }

// Validate implements validation.Validatable.
func (b Paragraph) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required, validation.Min(1)),
	)
}

// WithText returns a copy of b holding text. List blocks keep their text
// in bullet points and are returned unchanged with ok == false.
func WithText(b Block, text string) (_ Block, ok bool) {
	switch b := b.(type) {
	case Heading:
		b.Text = text
		return b, true
	case Paragraph:
		b.Text = text
		return b, true
	}
	return b, false
}

// PlainText returns the text of b, joining bullet points with newlines.
func PlainText(b Block) string {
	switch b := b.(type) {
	case Heading:
		return b.Text
	case Paragraph:
		return b.Text
	case BulletList:
		lines := make([]string, len(b.Points))
		for i, p := range b.Points {
			lines[i] = p.Text
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// GrowHeight returns the stored height after a content size report.
// Heights only grow.
func GrowHeight(current, reported float64) float64 {
	return max(current, reported)
}
