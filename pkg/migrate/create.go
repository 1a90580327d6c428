package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Each storefront owns a full copy of the wishlist tables, so new migrations
// start with one block per table prefix.
var migrationTemplate = template.Must(template.New("migration").Parse(`-- +goose Up
-- +goose StatementBegin
{{- range .Prefixes }}
-- {{ $.Slug }} for {{ if . }}{{ . }}*{{ else }}unprefixed{{ end }} tables
{{- end }}
SELECT 1;
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
{{- range .Prefixes }}
-- revert {{ $.Slug }} for {{ if . }}{{ . }}*{{ else }}unprefixed{{ end }} tables
{{- end }}
SELECT 1;
-- +goose StatementEnd
`))

// MigrationSlug lowercases name and collapses everything except letters and
// digits into single underscores.
func MigrationSlug(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<slug>.sql. Pass
// DefaultDir so the file is embedded on the next build.
func CreateSQLMigration(dir, name string, prefixes []string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := MigrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), slug))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()

	data := struct {
		Slug     string
		Prefixes []string
	}{Slug: slug, Prefixes: prefixes}
	if err := migrationTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("render migration %q: %w", path, err)
	}
	return path, nil
}
