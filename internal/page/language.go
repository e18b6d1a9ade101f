package page

import (
	"path"
	"strings"
)

var defaultLanguages = map[string]string{
	".py":   "python",
	".r":    "r",
	".jl":   "julia",
	".js":   "javascript",
	".jsx":  "jsx",
	".ts":   "typescript",
	".tsx":  "tsx",
	".go":   "go",
	".css":  "css",
	".html": "html",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
}

func languageFor(languages map[string]string, p string) string {
	if lang, ok := languages[strings.ToLower(path.Ext(p))]; ok {
		return lang
	}
	return "text"
}
