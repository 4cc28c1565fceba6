package cli

import (
	"text/template"
)

const statusTemplate = `=== Session Status ===

User:       {{if .User}}{{.User}}{{else}}not logged in{{end}}
State:      {{.State}}
Server:     {{if .Online}}reachable{{else}}unreachable{{end}}
Pending:    {{.Pending}} request(s)
Last sync:  {{if .LastSync.IsZero}}never{{else}}{{.LastSync.Format "2006-01-02 15:04:05 MST"}}{{end}}
{{- if .TokenExpires}}
Token:      expires {{.TokenExpires.Format "2006-01-02 15:04:05 MST"}}
{{- end}}
{{- range .Snapshots}}
{{printf "%-11s" .Name}} downloaded {{.At.Format "2006-01-02 15:04:05 MST"}}
{{- end}}
`

const operationTemplate = `=== Operation ===
{{- if not .Processes}}

No processes.
{{- end}}
{{- range .Processes}}

[{{.StatusID}}] {{.Title}} ({{.ID}}){{if .CRUD}} *{{.CRUD}}{{end}}
{{- range .Subprocesses}}
  [{{.StatusID}}] {{.Kind}} at {{.PointID}} ({{.ID}}){{if .CRUD}} *{{.CRUD}}{{end}}
  {{- range .Tasks}}
    - {{.MaterialID}}: {{.Quantity}} {{.Unit}} ({{.ID}}){{if .CRUD}} *{{.CRUD}}{{end}}
  {{- end}}
{{- end}}
{{- end}}
`

const pendingTemplate = `=== Pending Requests ({{len .}}) ===
{{- range .}}
{{.CRUDDate.Format "2006-01-02 15:04:05"}}  {{printf "%-6s" .CRUD}} {{printf "%-10s" .Entity}} {{.ID}}
{{- end}}
`

var (
	statusTmpl    = template.Must(template.New("status").Parse(statusTemplate))
	operationTmpl = template.Must(template.New("operation").Parse(operationTemplate))
	pendingTmpl   = template.Must(template.New("pending").Parse(pendingTemplate))
)
