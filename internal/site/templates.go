package site

import "html/template"

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}} | {{.Interval}}</title>
{{range .CSS}}<link rel="stylesheet" href="{{.}}">
{{end}}{{range .JavaScript}}<script src="{{.}}"></script>
{{end}}</head>
<body>
<header class="navbar navbar-expand-md fixed-top shadow-sm">
<div class="container-fluid">
<a class="navbar-brand" href="#">{{.IFO}}</a>
<ul class="nav navbar-nav">
{{range .Nav}}{{if .Children}}<li class="nav-item dropdown{{if .Active}} active{{end}}">
<a href="#" class="nav-link dropdown-toggle" data-toggle="dropdown">{{.Name}}</a>
<div class="dropdown-menu">
<a class="dropdown-item{{if .Active}} active{{end}}" href="{{.Href}}">{{.Name}}</a>
<div class="dropdown-divider"></div>
{{range .Children}}<a class="dropdown-item{{if .Active}} active{{end}}" href="{{.Href}}">{{.Name}}</a>
{{end}}</div>
</li>
{{else}}<li class="nav-item{{if .Active}} active{{end}}"><a class="nav-link" href="{{.Href}}">{{.Name}}</a></li>
{{end}}{{end}}</ul>
</div>
</header>
<div class="container-fluid">
<div class="page-header">
<h1>{{.Heading}}</h1>
<p class="text-muted">{{.Mode}}: {{.Interval}}</p>
</div>
{{.Content}}
</div>
<footer class="footer">
<div class="container-fluid">
<p>Page generated {{.Generated}}.{{if .About}} <a href="{{.About}}"><i class="fas fa-info-circle"></i> How was this page generated?</a>{{end}}</p>
</div>
</footer>
</body>
</html>
{{end}}`

const tmplRedirect = `
{{define "redirect"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta http-equiv="refresh" content="0; url={{.}}">
<title>Redirecting</title>
</head>
<body><p><a href="{{.}}">Continue</a></p></body>
</html>
{{end}}`

var pageTemplate = template.Must(template.New("page").Parse(tmplBase + tmplRedirect))
