package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sohanasz/viote/internal/document"
)

type frontmatter struct {
	Title string `yaml:"title,omitempty"`
}

// Render writes a title and blocks as Markdown. Bullet lists use "-" and
// numeric lists their "N." prefix.
func Render(title string, c document.Content) ([]byte, error) {
	var buf bytes.Buffer
	if title != "" {
		fm, err := yaml.Marshal(frontmatter{Title: title})
		if err != nil {
			return nil, fmt.Errorf("markdown: encode frontmatter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(fm)
		buf.WriteString("---\n\n")
	}

	for i, b := range c {
		if i > 0 {
			buf.WriteString("\n")
		}
		switch b := b.(type) {
		case document.Heading:
			text := oneLine(b.Text)
			if strings.HasSuffix(text, "#") {
				text += " #"
			}
			buf.WriteString(strings.TrimRight("# "+text, " "))
			buf.WriteString("\n")
		case document.Paragraph:
			for _, line := range strings.Split(b.Text, "\n") {
				buf.WriteString(escapeLine(line))
				buf.WriteString("\n")
			}
		case document.BulletList:
			for _, p := range b.Points {
				marker := "-"
				if b.Numeric {
					marker = b.Prefix(p)
				}
				buf.WriteString(strings.TrimRight(marker+" "+p.Text, " "))
				buf.WriteString("\n")
			}
		default:
			return nil, fmt.Errorf("markdown: unsupported block %T", b)
		}
	}
	return buf.Bytes(), nil
}

// escapeLine keeps a paragraph line from reading back as a heading, list
// item, frontmatter fence or blank line.
func escapeLine(line string) string {
	t := strings.TrimSpace(line)
	if t == "" {
		return `\`
	}
	if strings.ContainsRune(`#-*+•\`, []rune(t)[0]) || numberRe.MatchString(t) {
		return `\` + t
	}
	return t
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
