// Package markdown converts between Markdown text and block documents.
//
// Parse understands a small subset: ATX headings, paragraphs, "-", "*",
// "+" or "•" bullet items and "1." style numbered items, with optional
// YAML frontmatter. Render writes the same subset back. A paragraph line
// starting with a backslash is taken literally after the backslash; a lone
// backslash is an empty paragraph line.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sohanasz/viote/internal/document"
)

var (
	headingRe = regexp.MustCompile(`^#{1,6}(?:\s+(.*))?$`)
	closingRe = regexp.MustCompile(`\s+#+\s*$`)
	bulletRe  = regexp.MustCompile(`^[-*+•](?:\s+(.*))?$`)
	numberRe  = regexp.MustCompile(`^\d+[.)](?:\s+(.*))?$`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Title       string
	// Project is the frontmatter "project" field, empty when absent.
	Project string
	Content document.Content
}

// Parse converts Markdown into blocks. The title comes from the frontmatter
// "title" field, else the first level-one heading.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	content := parseBody(body)
	return &Result{
		Frontmatter: fm,
		Title:       deriveTitle(fm, content),
		Project:     stringField(fm, "project"),
		Content:     content,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the body. Missing or invalid frontmatter leaves the
// whole input as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// builder accumulates blocks while scanning lines.
type builder struct {
	out   document.Content
	para  []string
	list  *document.BulletList
	block int
}

func (b *builder) nextID() int {
	b.block++
	return b.block
}

func (b *builder) flush() {
	if len(b.para) > 0 {
		b.out = append(b.out, document.Paragraph{ID: b.nextID(), Text: strings.Join(b.para, "\n")})
		b.para = nil
	}
	if b.list != nil {
		b.out = append(b.out, *b.list)
		b.list = nil
	}
}

func (b *builder) item(numeric bool, text string) {
	if len(b.para) > 0 || (b.list != nil && b.list.Numeric != numeric) {
		b.flush()
	}
	if b.list == nil {
		b.list = &document.BulletList{ID: b.nextID(), Numeric: numeric, Current: 1}
	}
	b.list.Points = append(b.list.Points, document.BulletPoint{
		ID:   len(b.list.Points) + 1,
		Text: strings.TrimSpace(text),
	})
}

func parseBody(body string) document.Content {
	b := &builder{}
	for _, raw := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			b.flush()
		case headingRe.MatchString(line):
			b.flush()
			text := headingRe.FindStringSubmatch(line)[1]
			text = closingRe.ReplaceAllString(" "+text, "")
			b.out = append(b.out, document.Heading{ID: b.nextID(), Text: strings.TrimSpace(text)})
		case bulletRe.MatchString(line):
			b.item(false, bulletRe.FindStringSubmatch(line)[1])
		case numberRe.MatchString(line):
			b.item(true, numberRe.FindStringSubmatch(line)[1])
		default:
			if b.list != nil {
				b.flush()
			}
			b.para = append(b.para, strings.TrimPrefix(line, `\`))
		}
	}
	b.flush()
	if b.out == nil {
		return document.Content{}
	}
	return b.out
}

func deriveTitle(fm map[string]any, content document.Content) string {
	if s := stringField(fm, "title"); s != "" {
		return s
	}
	for _, blk := range content {
		if h, ok := blk.(document.Heading); ok {
			return h.Text
		}
	}
	return ""
}

func stringField(fm map[string]any, key string) string {
	if fm == nil {
		return ""
	}
	s, _ := fm[key].(string)
	return strings.TrimSpace(s)
}
