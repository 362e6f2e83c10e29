// Package web holds the server-rendered templates.
package web

import (
	"embed"
)

//go:embed templates
var Templates embed.FS
