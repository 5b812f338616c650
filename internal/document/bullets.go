package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BulletGlyph prefixes every point of a non-numeric list.
const BulletGlyph = "•"

// BulletPoint is one line item of a list block.
type BulletPoint struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Validate implements validation.Validatable.
func (p BulletPoint) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.Min(1)),
		validation.Field(&p.Text, validation.By(noNewline)),
	)
}

// BulletList is a list block. Point ids always read 1..n in order after a
// structural edit; Current records which point of this list was last
// focused.
type BulletList struct {
	ID              int
	Numeric         bool
	Points          []BulletPoint
	Current         int
	TextInputHeight float64
}

// NewBulletList returns a list holding a single empty point, focused.
func NewBulletList(numeric bool) BulletList {
	return BulletList{
		Numeric: numeric,
		Points:  []BulletPoint{{ID: 1}},
		Current: 1,
	}
}

func (l BulletList) BlockID() int { return l.ID }

func (l BulletList) Kind() Kind {
	if l.Numeric {
		return KindNumericList
	}
	return KindBulletList
}

func (l BulletList) Height() float64            { return l.TextInputHeight }
func (l BulletList) withID(id int) Block        { l.ID = id; return l }
func (l BulletList) withHeight(h float64) Block { l.TextInputHeight = h; return l }

// Validate implements validation.Validatable.
func (l BulletList) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required, validation.Min(1)),
		validation.Field(&l.Points, validation.Required, validation.By(contiguousIDs)),
	)
}

// Point returns the point with the given id.
func (l BulletList) Point(id int) (BulletPoint, bool) {
	if i := l.index(id); i >= 0 {
		return l.Points[i], true
	}
	return BulletPoint{}, false
}

// Prefix returns the marker rendered before p: its number for numeric
// lists, the bullet glyph otherwise.
func (l BulletList) Prefix(p BulletPoint) string {
	if l.Numeric {
		return strconv.Itoa(p.ID) + "."
	}
	return BulletGlyph
}

// Focus records id as the list's focused point.
func (l BulletList) Focus(id int) (BulletList, bool) {
	if l.index(id) < 0 {
		return l, false
	}
	l.Current = id
	return l, true
}

// SetText replaces the text of point id. Newlines are dropped; callers that
// want split semantics use Split.
func (l BulletList) SetText(id int, text string) (BulletList, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	points := clonePoints(l.Points)
	points[i].Text = stripNewlines(text)
	l.Points = points
	return l, true
}

// Split handles input containing a newline on the focused point. The point
// keeps the input minus its newlines, an empty point is inserted right
// after it and takes the focus, and every later point moves down by one.
//
// An event whose text already matches the point while the list's focus has
// moved elsewhere is stale and ignored.
func (l BulletList) Split(focusedID int, newText string) (BulletList, bool) {
	i := l.index(focusedID)
	if i < 0 {
		return l, false
	}
	before := stripNewlines(newText)
	if l.Points[i].Text == before && l.Current != focusedID {
		return l, false
	}

	points := make([]BulletPoint, 0, len(l.Points)+1)
	points = append(points, l.Points[:i+1]...)
	points[i].Text = before

	next := focusedID + 1
	points = append(points, BulletPoint{ID: next})
	for _, p := range l.Points[i+1:] {
		next++
		p.ID = next
		points = append(points, p)
	}

	l.Points = points
	l.Current = focusedID + 1
	return l, true
}

// Merge handles a backspace on an empty focused point: the point is
// removed, the remaining points are renumbered from 1 and the focus moves
// to the point that preceded it (or the new first point).
//
// A list is never emptied this way; a single-point list is left unchanged.
func (l BulletList) Merge(focusedID int) (BulletList, bool) {
	i := l.index(focusedID)
	if i < 0 || len(l.Points) == 1 || l.Points[i].Text != "" {
		return l, false
	}

	points := make([]BulletPoint, 0, len(l.Points)-1)
	for j, p := range l.Points {
		if j == i {
			continue
		}
		p.ID = len(points) + 1
		points = append(points, p)
	}

	l.Points = points
	l.Current = 1
	if i > 0 {
		// The predecessor sat at index i-1 and is now numbered i.
		l.Current = i
	}
	return l, true
}

// Normalize renumbers points from 1 and repairs a dangling focus. An empty
// list gets a single empty point.
func (l BulletList) Normalize() BulletList {
	if len(l.Points) == 0 {
		l.Points = []BulletPoint{{ID: 1}}
		l.Current = 1
		return l
	}
	cur := l.index(l.Current)
	points := clonePoints(l.Points)
	for i := range points {
		points[i].ID = i + 1
		points[i].Text = stripNewlines(points[i].Text)
	}
	l.Points = points
	l.Current = 1
	if cur >= 0 {
		l.Current = cur + 1
	}
	return l
}

func (l BulletList) index(id int) int {
	for i, p := range l.Points {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clonePoints(points []BulletPoint) []BulletPoint {
	out := make([]BulletPoint, len(points))
	copy(out, points)
	return out
}

func stripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func noNewline(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must not contain a newline")
	}
	return nil
}

func contiguousIDs(value any) error {
	points, _ := value.([]BulletPoint)
	for i, p := range points {
		if p.ID != i+1 {
			return fmt.Errorf("point %d has id %d, want %d", i, p.ID, i+1)
		}
	}
	return nil
}
