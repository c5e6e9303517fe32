package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (c *fakeClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.response, c.err
}

func (c *fakeClient) Close() error { return nil }

// fakeRecognizer returns entities keyed by input text; unknown text fails.
type fakeRecognizer struct {
	results map[string][]Entity
	texts   []string
	cancel  context.CancelFunc
}

func (r *fakeRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	r.texts = append(r.texts, text)
	if r.cancel != nil {
		r.cancel()
		return nil, ctx.Err()
	}
	entities, ok := r.results[text]
	if !ok {
		return nil, errors.New("service unavailable")
	}
	return entities, nil
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json fence", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic fence", input: "```\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "plain", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "preamble", input: "Here are the entities:\n[\"a\", \"b\"]", expected: `["a", "b"]`},
		{name: "trailing text", input: "{\"k\": 1}\n\nAnything else?", expected: `{"k": 1}`},
		{name: "nested", input: "Output: {\"o\": {\"i\": 1}}", expected: `{"o": {"i": 1}}`},
		{name: "no json", input: "sorry", expected: "sorry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestParseEntities(t *testing.T) {
	wrapped, err := ParseEntities(`{"entities": [{"text": "Python", "category": "Product"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []Entity{{Text: "Python", Category: "Product"}}, wrapped)

	bare, err := ParseEntities("```json\n[{\"text\": \"SQL\", \"category\": \"Skill\"}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []Entity{{Text: "SQL", Category: "Skill"}}, bare)

	_, err = ParseEntities("")
	assert.Error(t, err)
	_, err = ParseEntities(`{"entities": "nope"}`)
	assert.Error(t, err)
}

func TestSkillsFromEntities(t *testing.T) {
	skills := SkillsFromEntities([]Entity{
		{Text: "Python", Category: CategoryProduct},
		{Text: "machine learning", Category: CategorySkill},
		{Text: "python", Category: CategorySkill},
		{Text: "Acme", Category: "Organization"},
		{Text: "  ", Category: CategorySkill},
		{Text: "AWS", Category: CategoryProduct},
	})
	assert.Equal(t, []string{"aws", "machine learning", "python"}, skills)
}

func TestEncodeSkills(t *testing.T) {
	assert.Equal(t, "[]", EncodeSkills(nil))
	assert.Equal(t, `["python","sql"]`, EncodeSkills([]string{"python", "sql"}))
}

func TestLLMRecognizer(t *testing.T) {
	client := &fakeClient{response: `{"entities": [{"text": "Spark", "category": "Product"}]}`}
	rec := NewLLMRecognizer(client, 0)

	entities, err := rec.RecognizeEntities(context.Background(), "Build Spark jobs")
	require.NoError(t, err)
	assert.Equal(t, []Entity{{Text: "Spark", Category: "Product"}}, entities)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Build Spark jobs")

	client.err = errors.New("quota exceeded")
	_, err = rec.RecognizeEntities(context.Background(), "x")
	assert.EqualError(t, err, "quota exceeded")
}

func postings(descriptions ...string) []dataset.Posting {
	out := make([]dataset.Posting, len(descriptions))
	for i, d := range descriptions {
		out[i] = dataset.Posting{ID: i + 1, JobTitle: "Data Scientist", Description: d}
	}
	return out
}

func TestExtractSkills(t *testing.T) {
	rec := &fakeRecognizer{results: map[string][]Entity{
		"python and sql": {
			{Text: "Python", Category: CategoryProduct},
			{Text: "SQL", Category: CategorySkill},
			{Text: "python", Category: CategorySkill},
		},
		"nothing here": {{Text: "Paris", Category: "Location"}},
	}}
	core, logs := observer.New(zap.DebugLevel)

	records, report, err := ExtractSkills(context.Background(),
		postings("python and sql", "broken", "nothing here", "never reached"),
		rec,
		BatchOptions{Limit: 3, Logger: zap.New(core)},
	)
	require.NoError(t, err)

	assert.Equal(t, []dataset.SkillRecord{
		{ID: 1, JobTitle: "Data Scientist", SkillsExtracted: `["python","sql"]`},
		{ID: 2, JobTitle: "Data Scientist", SkillsExtracted: "[]"},
		{ID: 3, JobTitle: "Data Scientist", SkillsExtracted: "[]"},
	}, records)
	assert.Equal(t, BatchReport{Processed: 3, Failed: 1, Empty: 1}, report)
	assert.Len(t, rec.texts, 3)
	assert.Equal(t, 1, logs.FilterMessage("entity recognition failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("skill extraction finished").Len())
}

func TestExtractSkills_TruncatesDescriptions(t *testing.T) {
	long := strings.Repeat("a", 1500)
	rec := &fakeRecognizer{results: map[string][]Entity{}}

	_, _, err := ExtractSkills(context.Background(), postings(long), rec, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, rec.texts, 1)
	assert.Len(t, rec.texts[0], DefaultMaxChars)
}

func TestExtractSkills_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecognizer{cancel: cancel}

	records, _, err := ExtractSkills(ctx, postings("a", "b"), rec, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

func TestWaitFor(t *testing.T) {
	assert.NoError(t, WaitFor(context.Background(), 0))
	assert.NoError(t, WaitFor(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, WaitFor(ctx, 0), context.Canceled)
	assert.ErrorIs(t, WaitFor(ctx, 1<<40), context.Canceled)
}
