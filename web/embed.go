// Package web holds the page templates and static assets, embedded into
// the binary.
package web

import "embed"

// TemplatesFS embeds the page and fragment templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the page script.
//
//go:embed static/*
var StaticFS embed.FS
