package main

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"findmark/internal/find"
	"findmark/internal/markup"
)

// export runs a query over the whole document. With htmlPath it writes a
// highlighted HTML page there, otherwise it prints file:line:col per match.
func (a *app) export(query string, htmlPath string, w io.Writer) error {
	p, err := find.Compile(query)
	if err != nil {
		return err
	}
	found, err := find.Locate(p, 0, a.doc.Lines())
	if err != nil {
		return err
	}
	a.logger.Info("query", "pattern", p.String(), "lines", len(found))

	if htmlPath == "" {
		return writeLocations(w, a.path, found)
	}

	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("create html: %w", err)
	}
	if err := a.writeHTML(f, p, found); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close html: %w", err)
	}
	fmt.Fprintf(w, "%s: %d matching lines\n", htmlPath, len(found))
	return nil
}

func writeLocations(w io.Writer, path string, found []find.LineMatches) error {
	for _, lm := range found {
		for _, rec := range lm.Records() {
			if _, err := fmt.Fprintf(w, "%s:%d:%d\n", path, rec.Line+1, rec.RawOffset+1); err != nil {
				return err
			}
		}
	}
	return nil
}

type htmlLine struct {
	Number int
	Markup template.HTML
}

type htmlPage struct {
	Title   string
	Query   string
	CSS     template.CSS
	Lines   []htmlLine
	Matches int
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{.CSS}}
.chroma .ln { user-select: none; }
</style>
</head>
<body>
<p>{{.Matches}} matches of <code>{{.Query}}</code></p>
<pre class="chroma"><code>{{range .Lines}}<span class="line"><span class="ln">{{printf "%4d" .Number}}</span><span class="cl">{{.Markup}}</span></span>
{{end}}</code></pre>
</body>
</html>
`))

func (a *app) writeHTML(w io.Writer, p *find.Pattern, found []find.LineMatches) error {
	css, err := markup.CSS(appTheme.Name)
	if err != nil {
		return err
	}

	page := htmlPage{
		Title: a.path,
		Query: p.String(),
		CSS:   template.CSS(css),
		Lines: make([]htmlLine, a.doc.Len()),
	}
	for i := range page.Lines {
		page.Lines[i] = htmlLine{Number: i + 1, Markup: template.HTML(a.doc.BaseMarkup(i))}
	}
	for _, lm := range found {
		spliced, err := find.Splice(a.doc.BaseMarkup(lm.Line), find.Reconcile(lm, a.tabs), a.markers)
		if err != nil {
			a.logger.Warn("line left unhighlighted", "line", lm.Line, "err", err)
			continue
		}
		page.Lines[lm.Line].Markup = template.HTML(spliced)
		page.Matches += len(lm.Offsets)
	}

	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
