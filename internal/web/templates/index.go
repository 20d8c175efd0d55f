package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/a-h/templ"
)

// IndexParams is the data behind the main page.
type IndexParams struct {
	Formats          []core.OutputFormat
	Contracts        []core.Contract
	DefaultContract  string
	DefaultChunkSize int
	// RequireAPIKey disables the forms. Browsers cannot attach the
	// X-API-Key header to a plain form post.
	RequireAPIKey    bool
}

// Index renders the chunk and combine forms.
func Index(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<title>tabkit</title></head><body>`)

		submit := `<button type="submit">%s</button>`
		if p.RequireAPIKey {
			b.WriteString(`<p id="api-key-notice" role="alert">This server requires an API key. `)
			b.WriteString(`Send files to /api/chunk and /api/combine with an X-API-Key header, or use the tabkit CLI.</p>`)
			submit = `<button type="submit" disabled>%s</button>`
		}

		b.WriteString(`<section id="chunk"><h2>Split a file</h2>`)
		b.WriteString(`<form method="post" action="/api/chunk" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="file" accept="`+acceptedFiles+`" required>`)
		fmt.Fprintf(&b, `<label>Rows per file <input type="number" name="rows" min="1" value="%d"></label>`, p.DefaultChunkSize)
		b.WriteString(`<label>Sheet <input type="text" name="sheet"></label>`)
		writeDelimiterSelect(&b)
		writeFormatSelect(&b, p.Formats)
		b.WriteString(`<label><input type="checkbox" name="validate"> Check header</label>`)
		writeContractSelect(&b, p.Contracts, p.DefaultContract)
		b.WriteString(`<label>Archive name <input type="text" name="archive"></label>`)
		fmt.Fprintf(&b, submit, "Split and download")
		b.WriteString(`</form></section>`)

		b.WriteString(`<section id="combine"><h2>Combine files</h2>`)
		b.WriteString(`<form method="post" action="/api/combine" enctype="multipart/form-data">`)
		b.WriteString(`<select name="mode">`)
		for _, m := range []core.JoinMode{core.ModeUnion, core.ModeLeftJoin, core.ModeRightJoin} {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, m.String(), m.String())
		}
		b.WriteString(`</select>`)
		for i := 1; i <= core.MaxUnionSources; i++ {
			fmt.Fprintf(&b, `<input type="file" name="file_%d" accept="%s"><input type="text" name="sheet_%d" placeholder="sheet">`, i, acceptedFiles, i)
		}
		b.WriteString(`<label>Left key column <input type="number" name="left_key" min="0"></label>`)
		b.WriteString(`<label>Right key column <input type="number" name="right_key" min="0"></label>`)
		b.WriteString(`<label>Output name <input type="text" name="output"></label>`)
		writeDelimiterSelect(&b)
		writeFormatSelect(&b, p.Formats)
		fmt.Fprintf(&b, submit, "Combine and download")
		b.WriteString(`</form></section>`)

		b.WriteString(`<div id="status"></div></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// acceptedFiles lists the extensions offered by the file pickers. Legacy
// .xls stays selectable so the server can explain why it is rejected.
const acceptedFiles = ".csv,.txt,.tsv,.tab,.xlsx,.xlsm,.xls"

// writeDelimiterSelect offers the input separators. The empty option lets
// the server pick one from the file extension.
func writeDelimiterSelect(b *strings.Builder) {
	b.WriteString(`<label>Input delimiter <select name="delimiter"><option value="">From extension</option>`)
	for _, f := range []core.OutputFormat{core.FormatCSV, core.FormatSemicolon, core.FormatTab} {
		fmt.Fprintf(b, `<option value="%s">%s</option>`, f.String(), templ.EscapeString(f.Label()))
	}
	b.WriteString(`</select></label>`)
}

func writeFormatSelect(b *strings.Builder, formats []core.OutputFormat) {
	b.WriteString(`<select name="format">`)
	for _, f := range formats {
		fmt.Fprintf(b, `<option value="%s">%s</option>`, f.String(), templ.EscapeString(f.Label()))
	}
	b.WriteString(`</select>`)
}

func writeContractSelect(b *strings.Builder, contracts []core.Contract, selected string) {
	b.WriteString(`<select name="contract">`)
	for _, c := range contracts {
		attr := ""
		if c.Key == selected {
			attr = " selected"
		}
		fmt.Fprintf(b, `<option value="%s"%s>%s</option>`,
			templ.EscapeString(c.Key), attr, templ.EscapeString(c.Label))
	}
	b.WriteString(`</select>`)
}
