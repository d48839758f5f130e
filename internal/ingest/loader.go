package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/pkg/log"
)

// Indexer receives the parsed course and its chunks for embedding.
type Indexer interface {
	AddCourse(ctx context.Context, course core.Course, chunks []core.Chunk) error
}

// CourseRepository records the structured course catalog and answers the
// already-ingested check without touching embeddings.
type CourseRepository interface {
	Has(ctx context.Context, title string) (bool, error)
	Save(ctx context.Context, course core.Course) error
}

// Loader ingests a folder of course scripts. Documents already present are
// skipped; a single bad document is logged and skipped, never fatal for the
// batch.
type Loader struct {
	parser *Parser
	index  Indexer
	repo   CourseRepository
}

func NewLoader(parser *Parser, index Indexer, repo CourseRepository) *Loader {
	return &Loader{parser: parser, index: index, repo: repo}
}

// LoadFolder ingests every .txt file in dir and reports how many courses and
// chunks were added.
func (l *Loader) LoadFolder(ctx context.Context, dir string) (int, int, error) {
	logger := log.FromCtx(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read documents dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	coursesAdded, chunksAdded := 0, 0
	for _, name := range names {
		chunks, added, err := l.loadFile(ctx, filepath.Join(dir, name))
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("skipping document")
			continue
		}
		if added {
			coursesAdded++
			chunksAdded += chunks
		}
	}
	return coursesAdded, chunksAdded, nil
}

func (l *Loader) loadFile(ctx context.Context, path string) (int, bool, error) {
	logger := log.FromCtx(ctx)

	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	course, chunks, err := l.parser.Parse(path, f)
	if err != nil {
		return 0, false, err
	}

	exists, err := l.repo.Has(ctx, course.Title)
	if err != nil {
		return 0, false, fmt.Errorf("check course %q: %w", course.Title, err)
	}
	if exists {
		logger.Debug().Str("course", course.Title).Msg("already ingested, skipping")
		return 0, false, nil
	}

	if len(chunks) == 0 {
		logger.Warn().Str("course", course.Title).Msg("document produced no chunks")
	}

	if err := l.index.AddCourse(ctx, course, chunks); err != nil {
		return 0, false, err
	}
	if err := l.repo.Save(ctx, course); err != nil {
		return 0, false, fmt.Errorf("save course %q: %w", course.Title, err)
	}

	logger.Info().Str("course", course.Title).Int("chunks", len(chunks)).Msg("ingested course")
	return len(chunks), true, nil
}
