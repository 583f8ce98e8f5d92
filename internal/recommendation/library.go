// Package recommendation selects and renders the canned clinical text shown
// when an assessment completes.
package recommendation

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
)

// ErrTemplatesUnavailable means the template document is missing or malformed.
var ErrTemplatesUnavailable = errors.NewSentinel("recommendation templates unavailable")

// Library loads the tag → template map from a YAML document and caches it,
// like the decision tree store caches its snapshot.
type Library struct {
	path      string
	logger    *slog.Logger
	templates atomic.Pointer[map[models.TemplateTag]models.RecommendationTemplate]
}

func NewLibrary(path string, logger *slog.Logger) *Library {
	return &Library{
		path:   path,
		logger: logger.With("source", "recommendation.Library"),
	}
}

// Load returns the cached template map, reading the document on first use.
func (l *Library) Load(ctx context.Context) (map[models.TemplateTag]models.RecommendationTemplate, error) {
	if templates := l.templates.Load(); templates != nil {
		return *templates, nil
	}
	return l.Reload(ctx)
}

// Reload re-reads the document and atomically replaces the cached map.
func (l *Library) Reload(ctx context.Context) (map[models.TemplateTag]models.RecommendationTemplate, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "template document unreadable",
			slog.String("path", l.path), errors.SlogError(err))
		return nil, errors.Wrap(ErrTemplatesUnavailable, "read template document", slog.String("path", l.path))
	}

	var templates map[models.TemplateTag]models.RecommendationTemplate
	if err = yaml.Unmarshal(data, &templates); err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "template document malformed",
			slog.String("path", l.path), errors.SlogError(err))
		return nil, errors.Wrap(ErrTemplatesUnavailable, "decode template document", slog.String("path", l.path))
	}

	l.templates.Store(&templates)
	l.logger.LogAttrs(ctx, slog.LevelInfo, "recommendation templates loaded", slog.Int("templates", len(templates)))
	return templates, nil
}

// Template resolves a tag to its template. A missing tag falls back to the
// normal template, then to an all-empty template. Recommendation text must
// never block assessment completion, so this cannot fail.
func (l *Library) Template(ctx context.Context, tag models.TemplateTag) models.RecommendationTemplate {
	templates, err := l.Load(ctx)
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "templates unavailable, using empty template",
			errors.SlogError(err))
		return models.RecommendationTemplate{}
	}
	if template, ok := templates[tag]; ok {
		return template
	}
	if template, ok := templates[models.TemplateNormal]; ok {
		return template
	}
	return models.RecommendationTemplate{}
}
