package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/pkg/log"
)

const (
	catalogCollection = "course_catalog"
	contentCollection = "course_content"

	metaCourseTitle  = "course_title"
	metaLessonNumber = "lesson_number"
	metaLessonLink   = "lesson_link"
)

// Index stores chunk embeddings plus metadata and answers nearest-neighbor
// queries with optional course/lesson filtering. Course titles live in a
// separate catalog collection so that filter values can be fuzzy-resolved by
// title similarity.
type Index struct {
	db      *chromem.DB
	catalog *chromem.Collection
	content *chromem.Collection

	// floor is the minimum title similarity below which a course filter is
	// treated as unresolved.
	floor float32

	// writeMu serializes ingestion; reads go through chromem's own locking.
	writeMu sync.Mutex
}

// New opens the semantic index. An empty path keeps the index in memory,
// otherwise it is persisted under path.
func New(path string, embed chromem.EmbeddingFunc, titleSimilarityFloor float64) (*Index, error) {
	var db *chromem.DB
	var err error

	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open persistent index: %w", err)
		}
	}

	catalog, err := db.GetOrCreateCollection(catalogCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open catalog collection: %w", err)
	}
	content, err := db.GetOrCreateCollection(contentCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open content collection: %w", err)
	}

	return &Index{
		db:      db,
		catalog: catalog,
		content: content,
		floor:   float32(titleSimilarityFloor),
	}, nil
}

// AddCourse upserts a course and its chunks. Re-adding a title replaces its
// previous chunks; chunk identity is course title + lesson + position, so
// unchanged content converges to the same documents.
func (ix *Index) AddCourse(ctx context.Context, course core.Course, chunks []core.Chunk) error {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	lessonLinks := make(map[int]string, len(course.Lessons))
	for _, l := range course.Lessons {
		lessonLinks[l.Number] = l.Link
	}

	// Replace semantics: drop whatever was stored under this title before.
	err := ix.content.Delete(ctx, map[string]string{metaCourseTitle: course.Title}, nil)
	if err != nil {
		return fmt.Errorf("%w: purge course %q: %v", core.ErrIndexUnavailable, course.Title, err)
	}

	catalogDoc := chromem.Document{
		ID:      course.Title,
		Content: course.Title,
		Metadata: map[string]string{
			"link":       course.Link,
			"instructor": course.Instructor,
		},
	}
	if err := ix.catalog.AddDocuments(ctx, []chromem.Document{catalogDoc}, 1); err != nil {
		return fmt.Errorf("%w: add catalog entry: %v", core.ErrIndexUnavailable, err)
	}

	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:      chunkID(c),
			Content: c.Content,
			Metadata: map[string]string{
				metaCourseTitle:  c.CourseTitle,
				metaLessonNumber: strconv.Itoa(c.LessonNumber),
				metaLessonLink:   lessonLinks[c.LessonNumber],
			},
		})
	}

	if err := ix.content.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: add chunks: %v", core.ErrIndexUnavailable, err)
	}

	log.FromCtx(ctx).Info().
		Str("course", course.Title).
		Int("chunks", len(docs)).
		Msg("course indexed")
	return nil
}

// Search runs a similarity query over chunk content. courseFilter, when
// non-empty, is fuzzy-resolved against the catalog; a non-nil lessonFilter
// restricts to one lesson. An empty result set is valid and distinct from an
// error.
func (ix *Index) Search(ctx context.Context, query, courseFilter string, lessonFilter *int, k int) ([]core.SearchResult, error) {
	where := map[string]string{}

	if courseFilter != "" {
		resolved, err := ix.ResolveCourse(ctx, courseFilter)
		if err != nil {
			return nil, err
		}
		where[metaCourseTitle] = resolved
	}
	if lessonFilter != nil {
		where[metaLessonNumber] = strconv.Itoa(*lessonFilter)
	}

	if k <= 0 {
		k = 5
	}
	total := ix.content.Count()
	if total == 0 {
		return nil, nil
	}

	// Rank the full collection and filter afterwards: the metadata filter
	// may match fewer documents than k, and the collection stays small
	// enough that ranking it whole is cheap.
	results, err := ix.content.Query(ctx, query, total, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", core.ErrIndexUnavailable, err)
	}

	out := make([]core.SearchResult, 0, k)
	for _, r := range results {
		if !matchesMeta(r.Metadata, where) {
			continue
		}
		lesson, _ := strconv.Atoi(r.Metadata[metaLessonNumber])
		out = append(out, core.SearchResult{
			Content:      r.Content,
			CourseTitle:  r.Metadata[metaCourseTitle],
			LessonNumber: lesson,
			LessonLink:   r.Metadata[metaLessonLink],
			Similarity:   r.Similarity,
		})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func matchesMeta(meta, where map[string]string) bool {
	for key, want := range where {
		if meta[key] != want {
			return false
		}
	}
	return true
}

// ResolveCourse maps a possibly misspelled or partial course name to the
// closest known title. Below the similarity floor the filter is treated as
// unresolved rather than silently matching an unrelated course.
func (ix *Index) ResolveCourse(ctx context.Context, name string) (string, error) {
	if ix.catalog.Count() == 0 {
		return "", fmt.Errorf("%w: %q", core.ErrNoMatchingCourse, name)
	}

	matches, err := ix.catalog.Query(ctx, name, 1, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: resolve course: %v", core.ErrIndexUnavailable, err)
	}
	if len(matches) == 0 || matches[0].Similarity < ix.floor {
		return "", fmt.Errorf("%w: %q", core.ErrNoMatchingCourse, name)
	}

	if matches[0].ID != name {
		log.FromCtx(ctx).Debug().
			Str("requested", name).
			Str("resolved", matches[0].ID).
			Float32("similarity", matches[0].Similarity).
			Msg("fuzzy course resolution")
	}
	return matches[0].ID, nil
}

// CourseLink returns the stored link for an exact course title.
func (ix *Index) CourseLink(ctx context.Context, title string) (string, error) {
	if ix.catalog.Count() == 0 {
		return "", fmt.Errorf("%w: %q", core.ErrNoMatchingCourse, title)
	}

	matches, err := ix.catalog.Query(ctx, title, 1, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: catalog lookup: %v", core.ErrIndexUnavailable, err)
	}
	if len(matches) == 0 || matches[0].ID != title {
		return "", fmt.Errorf("%w: %q", core.ErrNoMatchingCourse, title)
	}
	return matches[0].Metadata["link"], nil
}

// ChunkCount reports how many chunks are stored.
func (ix *Index) ChunkCount() int {
	return ix.content.Count()
}

func chunkID(c core.Chunk) string {
	return fmt.Sprintf("%s|%d|%d", c.CourseTitle, c.LessonNumber, c.Position)
}
