package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/hr-pulse/internal/config"
	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/db"
	"github.com/jonathan/hr-pulse/internal/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "python", want: []string{"python"}},
		{in: "python, sql ,, docker", want: []string{"python", "sql", "docker"}},
		{in: " , ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSkills(tt.in))
		})
	}
}

func TestCleanTrainPredict(t *testing.T) {
	dir := isolate(t)
	raw := writeFile(t, filepath.Join(dir, "raw.csv"), rawExport(40))
	cleaned := filepath.Join(dir, "cleaned.csv")
	model := filepath.Join(dir, "models", "salary_model.json")

	out, err := executeCommand(t, "clean", "--input", raw, "--out", cleaned)
	require.NoError(t, err, out)
	assert.Contains(t, out, "DATASET CLEANING")

	postings, err := dataset.LoadPostings(cleaned)
	require.NoError(t, err)
	require.Len(t, postings, 40)
	assert.Equal(t, "Acme 0", postings[0].Company)
	require.NotNil(t, postings[0].AverageSalary)
	assert.Equal(t, 110.0, *postings[0].AverageSalary)

	out, err = executeCommand(t, "train", "--input", cleaned, "--out", model, "--trees", "10", "--seed", "7")
	require.NoError(t, err, out)
	assert.Contains(t, out, "MODEL TRAINING")
	assert.FileExists(t, model)

	predict := func(skills string) float64 {
		out, err := executeCommand(t, "predict", "--model", model, "--rating", "4", "--skills", skills, "--output-json")
		require.NoError(t, err, out)
		var res struct {
			PredictedSalaryK float64 `json:"predicted_salary_k"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &res), out)
		return res.PredictedSalaryK
	}
	assert.Greater(t, predict("python"), predict("excel"))

	out, err = executeCommand(t, "predict", "--model", model, "--rating", "4", "--skills", "python,cobol")
	require.NoError(t, err, out)
	assert.Contains(t, out, "SALARY PREDICTION")
	assert.Contains(t, out, "Ignored: cobol")
}

func TestPredict_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := executeCommand(t, "predict", "--model", filepath.Join(dir, "missing.json"), "--rating", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	_, err = executeCommand(t, "predict", "--model", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
}

func TestTrain_InvalidConfig(t *testing.T) {
	isolate(t)

	_, err := executeCommand(t, "train", "--test-ratio", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test-ratio")
}

func TestClean_RequiresFlags(t *testing.T) {
	isolate(t)

	_, err := executeCommand(t, "clean", "--input", "raw.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out")
}

type stubRecognizer struct {
	calls int
	fail  map[int]bool
}

func (s *stubRecognizer) RecognizeEntities(_ context.Context, text string) ([]nlp.Entity, error) {
	s.calls++
	if s.fail[s.calls] {
		return nil, errors.New("quota exceeded")
	}
	if strings.Contains(text, "Python") {
		return []nlp.Entity{{Text: "Python", Category: nlp.CategorySkill}, {Text: "Acme", Category: "Organization"}}, nil
	}
	return []nlp.Entity{{Text: "Excel", Category: nlp.CategoryProduct}}, nil
}

func stubRecognizerFactory(t *testing.T, rec nlp.EntityRecognizer) {
	t.Helper()
	orig := newRecognizer
	newRecognizer = func(context.Context, config.NLPConfig) (nlp.EntityRecognizer, func() error, error) {
		return rec, nil, nil
	}
	t.Cleanup(func() { newRecognizer = orig })
}

func TestExtractSkills(t *testing.T) {
	dir := isolate(t)
	raw := writeFile(t, filepath.Join(dir, "raw.csv"), rawExport(6))
	cleaned := filepath.Join(dir, "cleaned.csv")
	output := filepath.Join(dir, "skills.csv")

	_, err := executeCommand(t, "clean", "--input", raw, "--out", cleaned)
	require.NoError(t, err)

	rec := &stubRecognizer{fail: map[int]bool{2: true}}
	stubRecognizerFactory(t, rec)

	out, err := executeCommand(t, "extract-skills", "--input", cleaned, "--out", output, "--limit", "4", "--delay", "0s")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Processed: 4  Failed: 1")
	assert.Equal(t, 4, rec.calls)

	records, err := dataset.LoadSkillRecords(output)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, `["python"]`, records[0].SkillsExtracted)
	assert.Equal(t, "[]", records[1].SkillsExtracted)
	assert.Equal(t, `["excel"]`, records[3].SkillsExtracted)
}

func TestExtractSkills_DescriptionColumnsOnly(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "descriptions.csv"),
		"job_title,Job Description\nData Scientist,Python pipelines\nAnalyst,Excel reports\n")
	output := filepath.Join(dir, "skills.csv")

	stubRecognizerFactory(t, &stubRecognizer{})

	out, err := executeCommand(t, "extract-skills", "--input", input, "--out", output, "--delay", "0s")
	require.NoError(t, err, out)

	records, err := dataset.LoadSkillRecords(output)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Data Scientist", records[0].JobTitle)
	assert.Equal(t, `["python"]`, records[0].SkillsExtracted)
	assert.Equal(t, `["excel"]`, records[1].SkillsExtracted)
}

func TestExtractSkills_RequiresAPIKey(t *testing.T) {
	dir := isolate(t)
	raw := writeFile(t, filepath.Join(dir, "raw.csv"), rawExport(2))
	cleaned := filepath.Join(dir, "cleaned.csv")
	_, err := executeCommand(t, "clean", "--input", raw, "--out", cleaned)
	require.NoError(t, err)

	_, err = executeCommand(t, "extract-skills", "--input", cleaned, "--out", filepath.Join(dir, "skills.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

type fakeJobWriter struct {
	jobs   []db.Job
	closed bool
	err    error
}

func (f *fakeJobWriter) ReplaceJobs(_ context.Context, jobs []db.Job) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.jobs = jobs
	return int64(len(jobs)), nil
}

func (f *fakeJobWriter) Close() { f.closed = true }

func stubJobWriter(t *testing.T, w *fakeJobWriter) *string {
	t.Helper()
	var gotURL string
	orig := openJobWriter
	openJobWriter = func(_ context.Context, url string) (jobWriter, error) {
		gotURL = url
		return w, nil
	}
	t.Cleanup(func() { openJobWriter = orig })
	return &gotURL
}

const skillsCSV = "id,job_title,skills_extracted\n1,Data Scientist 0,\"[\"\"python\"\"]\"\n2,Data Scientist 1,[]\n9,Ghost,[]\n"

func TestSeedDB(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "skills.csv"), skillsCSV)
	w := &fakeJobWriter{}
	gotURL := stubJobWriter(t, w)
	t.Setenv("DATABASE_URL", "postgres://localhost/hrpulse")

	out, err := executeCommand(t, "seed-db", "--input", input)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Loaded 3 rows into jobs")
	assert.Equal(t, "postgres://localhost/hrpulse", *gotURL)
	assert.True(t, w.closed)

	require.Len(t, w.jobs, 3)
	assert.Equal(t, int64(1), w.jobs[0].ID)
	assert.Equal(t, `["python"]`, w.jobs[0].SkillsExtracted)
	assert.Nil(t, w.jobs[0].CompanyName)
}

func TestSeedDB_RequiresURL(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "skills.csv"), skillsCSV)
	stubJobWriter(t, &fakeJobWriter{})

	_, err := executeCommand(t, "seed-db", "--input", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSeedDB_WriteFailure(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "skills.csv"), skillsCSV)
	stubJobWriter(t, &fakeJobWriter{err: errors.New("permission denied for schema public")})

	_, err := executeCommand(t, "seed-db", "--input", input, "--db-url", "postgres://localhost/hrpulse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to replace jobs")
}

func TestUpdateDB(t *testing.T) {
	dir := isolate(t)
	raw := writeFile(t, filepath.Join(dir, "raw.csv"), rawExport(4))
	cleaned := filepath.Join(dir, "cleaned.csv")
	_, err := executeCommand(t, "clean", "--input", raw, "--out", cleaned)
	require.NoError(t, err)
	skills := writeFile(t, filepath.Join(dir, "skills.csv"), skillsCSV)

	w := &fakeJobWriter{}
	stubJobWriter(t, w)

	out, err := executeCommand(t, "update-db", "--cleaned", cleaned, "--skills", skills, "--db-url", "postgres://localhost/hrpulse")
	require.NoError(t, err, out)

	require.Len(t, w.jobs, 3)
	require.NotNil(t, w.jobs[0].CompanyName)
	assert.Equal(t, "Acme 0", *w.jobs[0].CompanyName)
	require.NotNil(t, w.jobs[1].Location)
	assert.Equal(t, "Austin, TX", *w.jobs[1].Location)
	require.NotNil(t, w.jobs[0].SalaryEstimate)
	assert.Contains(t, *w.jobs[0].SalaryEstimate, "$100K-$120K")
	assert.Nil(t, w.jobs[2].CompanyName, "id 9 has no cleaned row")
}

func TestBuildServer(t *testing.T) {
	dir := isolate(t)

	cfg, err := config.Load("",
		config.WithOverride("model.path", filepath.Join(dir, "missing.json")),
		config.WithOverride("upload.dir", filepath.Join(dir, "uploads")),
		config.WithOverride("rate-limit.cleanup-interval", "0s"),
	)
	require.NoError(t, err)

	srv, cleanup, err := buildServer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	_, err = os.Stat(filepath.Join(dir, "uploads"))
	assert.NoError(t, err, "upload dir is created")
}

func TestBuildServer_RequiredModel(t *testing.T) {
	dir := isolate(t)

	cfg, err := config.Load("",
		config.WithOverride("model.path", filepath.Join(dir, "missing.json")),
		config.WithOverride("model.required", true),
		config.WithOverride("upload.dir", filepath.Join(dir, "uploads")),
	)
	require.NoError(t, err)

	_, cleanup, err := buildServer(context.Background(), cfg, zap.NewNop())
	cleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load model")
}
