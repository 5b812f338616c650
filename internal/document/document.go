package document

import (
	"errors"
	"slices"
)

// ErrNoBlock is returned when a handle does not address a live block.
var ErrNoBlock = errors.New("no such block")

// Handle addresses a block inside one Document. Handles are assigned on
// append and never reused, so two blocks with equal content or a recycled
// id can still be told apart. The zero Handle addresses nothing.
type Handle uint64

type entry struct {
	handle Handle
	block  Block
}

// Document is a note being edited: a title and its blocks in reading
// order, plus the focused block.
type Document struct {
	title      string
	entries    []entry
	lastHandle Handle
	lastID     int
	focus      Handle
}

// New returns an empty document.
func New(title string) Document {
	return Document{title: title}
}

// Hydrate builds a document from persisted content. List blocks are
// normalized so their point ids read 1..n.
func Hydrate(title string, content Content) Document {
	d := Document{title: title}
	d.entries = make([]entry, 0, len(content))
	for _, b := range content {
		if l, ok := b.(BulletList); ok {
			b = l.Normalize()
		}
		d.lastHandle++
		d.entries = append(d.entries, entry{handle: d.lastHandle, block: b})
		d.lastID = max(d.lastID, b.BlockID())
	}
	return d
}

// Title returns the document title.
func (d Document) Title() string { return d.title }

// SetTitle returns a copy of d with the given title.
func (d Document) SetTitle(title string) Document {
	d.title = title
	return d
}

// Len returns the number of blocks.
func (d Document) Len() int { return len(d.entries) }

// LastID returns the highest block id assigned so far.
func (d Document) LastID() int { return d.lastID }

// Handles returns the handles of all blocks in reading order.
func (d Document) Handles() []Handle {
	out := make([]Handle, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.handle
	}
	return out
}

// Blocks returns the blocks in reading order.
func (d Document) Blocks() Content {
	out := make(Content, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.block
	}
	return out
}

// Block returns the block addressed by h.
func (d Document) Block(h Handle) (Block, bool) {
	if i := d.index(h); i >= 0 {
		return d.entries[i].block, true
	}
	return nil, false
}

// Create appends an empty block of the given kind and returns its handle.
// The new block's id is one past the highest id assigned so far.
func (d Document) Create(kind Kind) (Document, Handle, error) {
	b, err := NewBlock(kind)
	if err != nil {
		return d, 0, err
	}
	d.lastID++
	d.lastHandle++
	d.entries = append(slices.Clip(d.entries), entry{handle: d.lastHandle, block: b.withID(d.lastID)})
	return d, d.lastHandle, nil
}

// Delete removes the block addressed by h. Other block ids are left as
// they are. Deleting the focused block clears the focus.
func (d Document) Delete(h Handle) Document {
	i := d.index(h)
	if i < 0 {
		return d
	}
	d.entries = slices.Delete(slices.Clone(d.entries), i, i+1)
	if d.focus == h {
		d = d.ClearFocus()
	}
	return d
}

// DeleteSelected removes the focused block. Without a focus it does
// nothing.
func (d Document) DeleteSelected() Document {
	if d.focus == 0 {
		return d
	}
	return d.Delete(d.focus)
}

// Replace swaps the block addressed by h for b.
func (d Document) Replace(h Handle, b Block) (Document, error) {
	i := d.index(h)
	if i < 0 {
		return d, ErrNoBlock
	}
	d.entries = slices.Clone(d.entries)
	d.entries[i].block = b
	return d, nil
}

// Select focuses the block addressed by h. For a list the focused point
// is the one the list last recorded.
func (d Document) Select(h Handle) (Document, error) {
	if d.index(h) < 0 {
		return d, ErrNoBlock
	}
	d.focus = h
	return d, nil
}

// SelectBullet focuses point id of the list addressed by h.
func (d Document) SelectBullet(h Handle, id int) (Document, error) {
	b, ok := d.Block(h)
	if !ok {
		return d, ErrNoBlock
	}
	l, ok := b.(BulletList)
	if !ok {
		return d, ErrNoBlock
	}
	l, ok = l.Focus(id)
	if !ok {
		return d, ErrNoBlock
	}
	d, err := d.Replace(h, l)
	if err != nil {
		return d, err
	}
	d.focus = h
	return d, nil
}

// ClearFocus drops the current focus.
func (d Document) ClearFocus() Document {
	d.focus = 0
	return d
}

// Focus returns the focused block and, for lists, the focused point id.
func (d Document) Focus() (h Handle, bullet int, ok bool) {
	b, ok := d.Block(d.focus)
	if !ok {
		return 0, 0, false
	}
	if l, isList := b.(BulletList); isList {
		bullet = l.Current
	}
	return d.focus, bullet, true
}

// ReportHeight applies a content size report to the block addressed by h.
// Only that block's height changes, and it never shrinks.
func (d Document) ReportHeight(h Handle, reported float64) (Document, error) {
	b, ok := d.Block(h)
	if !ok {
		return d, ErrNoBlock
	}
	grown := GrowHeight(b.Height(), reported)
	if grown == b.Height() {
		return d, nil
	}
	return d.Replace(h, b.withHeight(grown))
}

func (d Document) index(h Handle) int {
	if h == 0 {
		return -1
	}
	for i, e := range d.entries {
		if e.handle == h {
			return i
		}
	}
	return -1
}
