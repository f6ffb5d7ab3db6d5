package ui

import (
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const helpMarkdown = `# ExcelOps

Load a workbook or CSV, then shape it with per-sheet filters, sorts and
column curation. Sheets are independent views over the same dataset.

## Filters

Filter rows combine left to right with AND/OR. Operators: ` + "`==`" + `,
` + "`!=`" + `, ` + "`>`" + `, ` + "`<`" + `, ` + "`>=`" + `, ` + "`<=`" + `,
` + "`contains`" + `, ` + "`in`" + `, ` + "`column-equals`" + `,
` + "`column-not-equals`" + `. The value ` + "`column average`" + ` compares
each cell against the column's numeric mean.

## Sorts

Sort rows joined with AND form one multi-key sort; OR starts a new,
lower-precedence sort. Blank cells always sort last.

## Pivot

Pick row keys, optional column keys and value columns, plus an
aggregation (sum, mean, count, min, max). Generating a pivot replaces the
sheet's view and export output until cleared.

## VLOOKUP

Joins a lookup file into the current sheet's view by one or more keys.
Every row is kept; misses are filled with the configured default. The
merged table becomes the working dataset for all sheets.

## Presets

Save the current sheet configurations under a name and re-apply them to
any dataset later. Presets also drive the batch CLI, which slices an
input file per identifier and writes one sheet each.
`

func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	out := markdown.ToHTML([]byte(helpMarkdown), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
