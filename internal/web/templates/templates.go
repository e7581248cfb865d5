// Package templates embeds the HTML forms and fragments served by the web
// package.
package templates

import "embed"

//go:embed *.html partials/*.html
var FS embed.FS
