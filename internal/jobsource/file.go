package jobsource

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/leadradar/internal/model"
)

//go:embed schemas/job_feed.schema.json
var feedSchema string

var feedSchemaLoader = gojsonschema.NewStringLoader(feedSchema)

// FeedError reports every schema violation found in a job feed.
type FeedError struct {
	Path   string
	Errors []string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("job feed %s: %s", e.Path, strings.Join(e.Errors, "; "))
}

type feed struct {
	Jobs []model.RawJob `json:"jobs"`
}

// FileSource reads a JSON job feed of the form {"jobs": [...]} from disk.
// The file is validated against an embedded schema before decoding and
// descriptions are reduced to plain text.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// FetchJobs reads, validates and decodes the feed. Jobs without a source
// label are tagged with the feed file name.
func (s *FileSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read job feed: %w", err)
	}

	jobs, err := decodeFeed(s.path, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded job feed", "path", s.path, "count", len(jobs))
	return jobs, nil
}

func decodeFeed(path string, data []byte) ([]model.RawJob, error) {
	result, err := gojsonschema.Validate(feedSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate job feed %s: %w", path, err)
	}
	if !result.Valid() {
		fe := &FeedError{Path: path}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			fe.Errors = append(fe.Errors, field+": "+desc.Description())
		}
		return nil, fe
	}

	var f feed
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode job feed %s: %w", path, err)
	}

	for i := range f.Jobs {
		f.Jobs[i].Description = extractText(f.Jobs[i].Description)
		if f.Jobs[i].Source == "" {
			f.Jobs[i].Source = "Feed (" + filepath.Base(path) + ")"
		}
	}
	return f.Jobs, nil
}
