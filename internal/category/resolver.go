// Package category validates requested download categories against the
// configured allow-list and derives their destination directories.
package category

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jdbridge/jdbridge/internal/config"
)

// Category is a named bucket mapping to a destination directory under the
// configured base path.
type Category struct {
	Name      string `json:"name"`
	Directory string `json:"directory"`
}

// InvalidCategoryError reports a category outside the allow-list.
type InvalidCategoryError struct {
	Name    string
	Allowed []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category: %s. Allowed categories: %s", e.Name, strings.Join(e.Allowed, ", "))
}

// DirectoryError reports a destination directory that could not be created.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("cannot create destination directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// Resolver maps category names to destination directories under policy
// constraints.
type Resolver struct {
	basePath    string
	defaultName string
	allowed     []string
	aliases     map[string][]string
	logger      zerolog.Logger
}

// NewResolver creates a resolver from the downloads configuration.
func NewResolver(cfg config.DownloadsConfig, logger zerolog.Logger) *Resolver {
	return &Resolver{
		basePath:    cfg.BasePath,
		defaultName: cfg.DefaultCategory,
		allowed:     cfg.AllowedCategories,
		aliases:     cfg.CategoryAliases,
		logger:      logger.With().Str("component", "category").Logger(),
	}
}

// Canonical maps an incoming category name through the configured aliases.
// Matching is case-insensitive; names without an alias pass through
// unchanged and are validated against the allow-list later.
func (r *Resolver) Canonical(name string) string {
	for canonical, aliases := range r.aliases {
		for _, alias := range aliases {
			if strings.EqualFold(name, alias) {
				r.logger.Debug().Str("category", name).Str("canonical", canonical).Msg("mapped category alias")
				return canonical
			}
		}
	}
	return name
}

// Resolve validates the category name and ensures its destination directory
// exists. An empty name selects the configured default. No directory is
// created when validation fails.
func (r *Resolver) Resolve(name string) (Category, error) {
	if name == "" {
		name = r.defaultName
	}
	name = r.Canonical(name)

	if !r.isAllowed(name) {
		return Category{}, &InvalidCategoryError{Name: name, Allowed: r.allowed}
	}

	dir := filepath.Join(r.basePath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Category{}, &DirectoryError{Path: dir, Err: err}
	}

	return Category{Name: name, Directory: dir}, nil
}

func (r *Resolver) isAllowed(name string) bool {
	for _, allowed := range r.allowed {
		if name == allowed {
			return true
		}
	}
	return false
}
