package mcpserver

// BlockFormatContract describes how notes are written as Markdown for the
// create_note tool and how they come back from read_note.
const BlockFormatContract = `# Viote Note Format

A note is a title plus an ordered list of blocks. Over MCP notes travel as
Markdown; each Markdown construct below maps to exactly one block type.

## Structure

` + "```" + `markdown
---
title: Groceries          # OPTIONAL – otherwise the first heading is used
project: <project-id>     # OPTIONAL – overrides the project argument
---

# Heading text

Paragraph text. Consecutive lines
stay in the same paragraph.

- bullet point
- another point

1. numbered point
2. numbers are assigned on save
` + "```" + `

## Block types

| Markdown              | Block         |
|-----------------------|---------------|
| ` + "`# text`" + ` (any level)  | heading       |
| plain lines           | paragraph     |
| ` + "`-`, `*`, `+`, `•`" + `    | bulletList    |
| ` + "`1.` or `1)`" + `           | numericList   |

## Rules

1. Blocks are separated by a blank line.
2. A list ends at a blank line or when the marker switches between bullets
   and numbers.
3. Points are a single line. Nested lists are flattened.
4. Numbering in the source is ignored; points are renumbered 1..n.
5. Inline Markdown (emphasis, links) is kept as literal text.
6. Encoding is UTF-8.

## JSON form

The REST API stores the same note as JSON content:

` + "```" + `json
[
  {"id": 1, "type": "heading", "text": "Groceries"},
  {"id": 2, "type": "bulletList", "text": [{"id": 1, "text": "milk"}]}
]
` + "```" + `
`
