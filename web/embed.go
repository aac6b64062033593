// Package web holds the register's HTML templates and browser assets.
package web

import "embed"

// Templates embeds the layouts, partials and pages rendered by internal/view.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the stylesheet and the confirm/auto-submit script.
//
//go:embed static/**/*
var Static embed.FS
