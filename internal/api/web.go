package api

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/susu3304/pointbot/internal/ledger"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>pointbot leaderboard</title>
<style>
body { font-family: sans-serif; max-width: 32rem; margin: 2rem auto; }
td.score { text-align: right; padding-right: 1rem; }
</style>
</head>
<body>
<h1>pointbot</h1>
{{if .Entries}}
<h2>Top {{.Count}}</h2>
<table>
{{range .Entries}}<tr><td class="score">{{.Score}}</td><td>{{.Identity}}</td></tr>
{{end}}</table>
{{else}}
<p>No recorded points</p>
{{end}}
<p>Give points in chat with <code>{{.Prefix}} &lt;nick&gt; &lt;value&gt;</code>.</p>
</body>
</html>
`))

type pageData struct {
	Prefix  string
	Count   int
	Entries []ledger.Entry
}

func (a *API) handleWebInterface(w http.ResponseWriter, r *http.Request) {
	data := pageData{Prefix: a.prefix, Count: defaultLimit}
	if a.ledger != nil {
		data.Entries, _ = a.ledger.TopN(defaultLimit, "")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		a.logger.Warn("Failed to render page", zap.Error(err))
	}
}
