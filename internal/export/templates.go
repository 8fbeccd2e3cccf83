package export

// The two document templates share one shape: a title, then each module as
// a section with a field list, submodules as subsections. They differ only
// in heading and link syntax, which the escape/link template funcs carry.

const markdownTemplate = `{{ define "fields_md" -}}
{{ if .Description }}{{ escape .Description }}

{{ end -}}
- Machine name: ` + "`{{ .MachineName }}`" + `
{{- if .Group }}
- Group: {{ escape .Group }}
{{- end }}
{{- if .URL }}
- URL: {{ .URL }}
{{- end }}
{{- if .Owners }}
- Owner(s): {{ range $i, $p := .Owners }}{{ if $i }}, {{ end }}{{ link $p.Display $p.URL }}{{ end }}
{{- end }}
{{- if .Peers }}
- Peer(s): {{ range $i, $p := .Peers }}{{ if $i }}, {{ end }}{{ link $p.Display $p.URL }}{{ end }}
{{- end }}
{{- if .Emeritus }}
- Emeritus: {{ escape .Emeritus }}
{{- end }}
{{- if .ReviewGroup }}
- Review group: {{ link (printf "#%s" .ReviewGroup) .ReviewURL }}
{{- end }}
{{- if .Includes }}
- Includes:
{{- range .Includes }}
  - {{ link .Pattern .URL }}
{{- end }}
{{- end }}
{{- if .Excludes }}
- Excludes:
{{- range .Excludes }}
  - {{ link .Pattern .URL }}
{{- end }}
{{- end }}
{{ end -}}
# {{ escape .Repo }} module directory
{{ range .Modules }}
## {{ escape .Name }}

{{ template "fields_md" . }}
{{- range .Submodules }}
### {{ escape .Name }}

{{ template "fields_md" . }}
{{- end }}
{{- end }}`

const rstTemplate = `{{ define "fields_rst" -}}
{{ if .Description }}{{ escape .Description }}

{{ end -}}
:Machine name: {{ .MachineName }}
{{- if .Group }}
:Group: {{ escape .Group }}
{{- end }}
{{- if .URL }}
:URL: {{ .URL }}
{{- end }}
{{- if .Owners }}
:Owner(s): {{ range $i, $p := .Owners }}{{ if $i }}, {{ end }}{{ link $p.Display $p.URL }}{{ end }}
{{- end }}
{{- if .Peers }}
:Peer(s): {{ range $i, $p := .Peers }}{{ if $i }}, {{ end }}{{ link $p.Display $p.URL }}{{ end }}
{{- end }}
{{- if .Emeritus }}
:Emeritus: {{ escape .Emeritus }}
{{- end }}
{{- if .ReviewGroup }}
:Review group: {{ link (printf "#%s" .ReviewGroup) .ReviewURL }}
{{- end }}
{{- if .Includes }}
:Includes: {{ range $i, $p := .Includes }}{{ if $i }}, {{ end }}{{ link $p.Pattern $p.URL }}{{ end }}
{{- end }}
{{- if .Excludes }}
:Excludes: {{ range $i, $p := .Excludes }}{{ if $i }}, {{ end }}{{ link $p.Pattern $p.URL }}{{ end }}
{{- end }}
{{ end -}}
{{ $title := printf "%s module directory" .Repo -}}
{{ escape $title }}
{{ underline $title "=" }}
{{ range .Modules }}
{{ $name := escape .Name -}}
{{ $name }}
{{ underline $name "-" }}

{{ template "fields_rst" . }}
{{- range .Submodules }}
{{ $sub := escape .Name -}}
{{ $sub }}
{{ underline $sub "~" }}

{{ template "fields_rst" . }}
{{- end }}
{{- end }}`
