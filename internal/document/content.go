package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Content is the serialized form of a document body:
//
//	Block       := { id: int, blockType: string, text: string | BulletPoint[] }
//	BulletPoint := { id: int, text: string }
//
// Height hints and focus are editor state and are not encoded.
type Content []Block

type wireBlock struct {
	ID        int             `json:"id"`
	BlockType Kind            `json:"blockType"`
	Text      json.RawMessage `json:"text"`
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	out := make([]wireBlock, 0, len(c))
	for _, b := range c {
		var text any
		switch b := b.(type) {
		case Heading:
			text = b.Text
		case Paragraph:
			text = b.Text
		case BulletList:
			points := b.Points
			if points == nil {
				points = []BulletPoint{}
			}
			text = points
		default:
			return nil, fmt.Errorf("document: marshal: unsupported block %T", b)
		}
		raw, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("document: marshal block %d: %w", b.BlockID(), err)
		}
		out = append(out, wireBlock{ID: b.BlockID(), BlockType: b.Kind(), Text: raw})
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire []wireBlock
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("document: unmarshal content: %w", err)
	}
	out := make(Content, 0, len(wire))
	for _, w := range wire {
		b, err := decodeBlock(w)
		if err != nil {
			return err
		}
		out = append(out, b)
	}
	*c = out
	return nil
}

func decodeBlock(w wireBlock) (Block, error) {
	switch w.BlockType {
	case KindHeading, KindParagraph:
		var text string
		if err := decodeText(w.Text, &text); err != nil {
			return nil, fmt.Errorf("document: block %d: %w", w.ID, err)
		}
		if w.BlockType == KindHeading {
			return Heading{ID: w.ID, Text: text}, nil
		}
		return Paragraph{ID: w.ID, Text: text}, nil
	case KindBulletList, KindNumericList:
		var points []BulletPoint
		if err := decodeText(w.Text, &points); err != nil {
			return nil, fmt.Errorf("document: block %d: %w", w.ID, err)
		}
		l := BulletList{ID: w.ID, Numeric: w.BlockType == KindNumericList, Points: points}
		if len(points) > 0 {
			l.Current = points[0].ID
		}
		return l, nil
	}
	return nil, fmt.Errorf("document: block %d: %w: %q", w.ID, ErrUnknownKind, w.BlockType)
}

func decodeText(raw json.RawMessage, target any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, target)
}

// Validate checks content received from outside the editor: block ids are
// positive and unique, lists are non-empty with point ids 1..n, and no
// point text holds a newline.
func Validate(c Content) error {
	if err := validation.Validate([]Block(c)); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(c))
	for _, b := range c {
		if _, dup := seen[b.BlockID()]; dup {
			return validation.NewError("validation_duplicate_block_id",
				fmt.Sprintf("duplicate block id %d", b.BlockID()))
		}
		seen[b.BlockID()] = struct{}{}
	}
	return nil
}
