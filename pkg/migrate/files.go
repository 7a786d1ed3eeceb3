package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

const migrationTemplate = `-- %s
-- +goose Up
-- +goose StatementBegin
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- +goose StatementEnd
`

// NewFile writes an empty goose migration named <version>_<slug>.sql into
// dir, where version is now in UTC.
func NewFile(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	full := filepath.Join(dir, now.UTC().Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating migration: %w", err)
	}
	_, err = fmt.Fprintf(f, migrationTemplate, slug)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return full, err
}

func slugify(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Check verifies every .sql file under dir in fsys: a 14 digit version
// prefix, no duplicate versions, both goose sections and balanced
// StatementBegin/StatementEnd markers.
func Check(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	versions := make(map[int64]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		version, err := fileVersion(name)
		if err != nil {
			return err
		}
		if prev, dup := versions[version]; dup {
			return fmt.Errorf("migrations %s and %s share version %d", prev, name, version)
		}
		versions[version] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := checkBody(name, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func fileVersion(name string) (int64, error) {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok || len(prefix) != len(versionLayout) || rest == ".sql" {
		return 0, fmt.Errorf("invalid migration filename %q (want YYYYMMDDHHMMSS_name.sql)", name)
	}
	if _, err := time.Parse(versionLayout, prefix); err != nil {
		return 0, fmt.Errorf("invalid migration filename %q: version is not a timestamp", name)
	}
	return strconv.ParseInt(prefix, 10, 64)
}

func checkBody(name, body string) error {
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(body, marker) {
			return fmt.Errorf("migration %s is missing %q", name, marker)
		}
	}
	if begins, ends := strings.Count(body, "-- +goose StatementBegin"), strings.Count(body, "-- +goose StatementEnd"); begins != ends {
		return fmt.Errorf("migration %s has %d StatementBegin but %d StatementEnd", name, begins, ends)
	}
	return nil
}
