package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"
)

var migrationHeader = template.Must(template.New("migration").Parse(
	`-- {{.Description}}{{if .Rollback}} (rollback){{end}}
-- Created {{.Created}}

`))

// NewMigration is a freshly written up/down file pair
type NewMigration struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down pair into dir numbered one above the
// highest version already there, e.g. 000004_add_batch_index.up.sql. Both
// files are removed again if either cannot be written.
func Create(dir, name, description string) (*NewMigration, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if description == "" {
		description = strings.ReplaceAll(slug, "_", " ")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	base := filepath.Join(dir, fmt.Sprintf("%06d_%s", version, slug))
	m := &NewMigration{
		Version:  version,
		Name:     slug,
		UpPath:   base + ".up.sql",
		DownPath: base + ".down.sql",
	}
	created := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigration(m.UpPath, description, created, false); err != nil {
		return nil, err
	}
	if err := writeMigration(m.DownPath, description, created, true); err != nil {
		_ = os.Remove(m.UpPath)
		return nil, err
	}
	return m, nil
}

func writeMigration(path, description, created string, rollback bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return migrationHeader.Execute(f, map[string]any{
		"Description": description,
		"Created":     created,
		"Rollback":    rollback,
	})
}

// slugify lower-cases name and joins its words with underscores
func slugify(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	return strings.ToLower(strings.Join(words, "_"))
}
