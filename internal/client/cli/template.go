package cli

const itemTemplate = `
=== Item Details ===

Name:     {{.Name}}{{if .Pending}} (pending sync){{end}}
ID:       {{.ID}}
SKU:      {{.SKU}}
{{- if .Barcode }}
Barcode:  {{.Barcode}}
{{- end}}
Quantity: {{.Quantity}}{{if .Unit}} {{.Unit}}{{end}}
Minimum:  {{.MinQuantity}}
{{- if .Category }}
Category: {{.Category}}
{{- end}}
{{- if .Location }}
Location: {{.Location}}
{{- end}}
{{- if .IsLowStock }}
⚠️  Low stock
{{- end}}
`

const statusTemplate = `
=== Status ===

{{if .Auth -}}
User:      {{.Auth.Email}}
Session:   {{if .Expired}}expired, run 'itemsync login'{{else}}valid until {{.Auth.ExpiresAt.Format "2006-01-02 15:04:05"}}{{end}}
{{- else -}}
User:      not authenticated, run 'itemsync login'
{{- end}}
Network:   {{if .Online}}online{{else}}offline{{end}}
Realtime:  {{.Realtime.State}}{{if .Realtime.Failed}} (gave up reconnecting){{end}}
Pending:   {{.Pending}}
Unread:    {{.Unread}}
{{- if .OnlineUsers}}
Users:     {{join .OnlineUsers ", "}}
{{- end}}
{{- range $item, $holder := .Locks}}
Editing:   {{$item}} by {{$holder}}
{{- end}}
`
