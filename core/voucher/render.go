package voucher

import (
	"bytes"
	"html/template"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/challan/core/fee"
	appfs "github.com/trezcool/challan/fs"
)

var (
	tmpl     *template.Template
	tmplErr  error
	tmplInit sync.Once
)

var funcs = template.FuncMap{
	"amount": fee.FormatAmount,
	"date":   func(t time.Time) string { return t.Format("02-Jan-2006") },
}

func parseTemplate() {
	tmpl, tmplErr = template.New("voucher.gohtml").
		Funcs(funcs).
		Option("missingkey=error").
		ParseFS(appfs.FS, "assets/templates/voucher/voucher.gohtml")
}

// Render returns the printable HTML of the document; "" when there is nothing to print.
func Render(doc Document) (string, error) {
	if len(doc.Pages) == 0 {
		return "", nil
	}
	tmplInit.Do(parseTemplate) // only parse once
	if tmplErr != nil {
		return "", errors.Wrap(tmplErr, "voucher.parseTemplate")
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, doc); err != nil {
		return "", errors.Wrap(err, "voucher.Render")
	}
	return buff.String(), nil
}
