package html

import "embed"

// templateFS holds the page and index templates.
//
//go:embed templates/*.tmpl
var templateFS embed.FS

// themeFS holds one CSS file per selectable theme.
//
//go:embed themes/*.css
var themeFS embed.FS
