package index

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syllabot/syllabot/internal/core"
)

// stubEmbedding is a deterministic bag-of-words embedding: texts sharing
// words land close together, disjoint texts are orthogonal.
func stubEmbedding() chromem.EmbeddingFunc {
	const dim = 256
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, dim)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, ".,!?:;\"'")
			h := fnv.New32a()
			h.Write([]byte(w))
			vec[h.Sum32()%dim]++
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			vec[0] = 1
			return vec, nil
		}
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
		return vec, nil
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := New("", stubEmbedding(), 0.3)
	require.NoError(t, err)
	return ix
}

func lesson(n int) *int { return &n }

func testCourse() (core.Course, []core.Chunk) {
	course := core.Course{
		Title: "Introduction to Vector Retrieval",
		Link:  "https://example.com/vectors",
		Lessons: []core.Lesson{
			{Number: 1, Title: "Embeddings", Link: "https://example.com/vectors/1"},
			{Number: 2, Title: "Similarity Search", Link: "https://example.com/vectors/2"},
		},
	}
	chunks := []core.Chunk{
		{Content: "Embeddings map text into dense vectors.", CourseTitle: course.Title, LessonNumber: 1, Position: 0},
		{Content: "Cosine similarity ranks nearest vectors.", CourseTitle: course.Title, LessonNumber: 2, Position: 1},
	}
	return course, chunks
}

func TestSearchEmptyIndexReturnsNoResults(t *testing.T) {
	ix := newTestIndex(t)

	results, err := ix.Search(context.Background(), "anything at all", "", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFindsRelevantChunk(t *testing.T) {
	ix := newTestIndex(t)
	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(context.Background(), course, chunks))

	results, err := ix.Search(context.Background(), "dense vectors embeddings", "", nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "Embeddings map text into dense vectors.", top.Content)
	assert.Equal(t, course.Title, top.CourseTitle)
	assert.Equal(t, 1, top.LessonNumber)
	assert.Equal(t, "https://example.com/vectors/1", top.LessonLink)
}

func TestSearchCourseFilterExcludesOtherCourses(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	other := core.Course{Title: "Distributed Consensus Basics"}
	otherChunks := []core.Chunk{
		{Content: "Vectors of log entries replicate between nodes.", CourseTitle: other.Title, LessonNumber: 1, Position: 0},
	}
	require.NoError(t, ix.AddCourse(ctx, other, otherChunks))

	results, err := ix.Search(ctx, "vectors", "Introduction to Vector Retrieval", nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, course.Title, r.CourseTitle)
	}
}

func TestSearchLessonFilter(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	results, err := ix.Search(ctx, "vectors", "", lesson(2), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].LessonNumber)
}

func TestResolveCourseFuzzyMatch(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	resolved, err := ix.ResolveCourse(ctx, "vector retrieval")
	require.NoError(t, err)
	assert.Equal(t, course.Title, resolved)
}

func TestResolveCourseBelowFloor(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	_, err := ix.ResolveCourse(ctx, "medieval pottery glazing")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoMatchingCourse)
}

func TestSearchUnresolvedCourseFilter(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	_, err := ix.Search(ctx, "vectors", "medieval pottery glazing", nil, 5)
	assert.ErrorIs(t, err, core.ErrNoMatchingCourse)
}

func TestAddCourseIsIdempotent(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))
	first := ix.ChunkCount()

	require.NoError(t, ix.AddCourse(ctx, course, chunks))
	assert.Equal(t, first, ix.ChunkCount())
}

func TestCourseLink(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	course, chunks := testCourse()
	require.NoError(t, ix.AddCourse(ctx, course, chunks))

	link, err := ix.CourseLink(ctx, course.Title)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/vectors", link)

	_, err = ix.CourseLink(ctx, "Unknown Course")
	assert.ErrorIs(t, err, core.ErrNoMatchingCourse)
}
