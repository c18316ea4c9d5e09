package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wares/internal/attributes"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func parseDraftID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid draft id %q", arg)
	}
	return id, nil
}

// statUpload resolves the absolute path, size, and media type of a local file
// selected for staging.
func statUpload(path string) (string, int64, string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", 0, "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return "", 0, "", fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return "", 0, "", fmt.Errorf("%q is a directory", path)
	}
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(absolute)))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return absolute, info.Size(), mediaType, nil
}

// fieldLabel prefers the schema's own label and falls back to a readable
// rendering of the field name.
func fieldLabel(field attributes.FieldDef) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(field.Name, "_", " "))
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(text, color string, enabled bool) string {
	if !enabled || color == "" {
		return text
	}
	return color + text + ansiReset
}
