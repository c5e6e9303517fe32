package nlp

import (
	"context"
	"time"

	"github.com/jonathan/hr-pulse/internal/dataset"
	"github.com/jonathan/hr-pulse/internal/ingestion"
	"github.com/jonathan/hr-pulse/internal/logger"
	"go.uber.org/zap"
)

// Batch defaults.
const (
	DefaultLimit    = 100
	DefaultMaxChars = 1000
	DefaultDelay    = time.Second
)

// BatchOptions configures ExtractSkills. Limit 0 processes every posting.
type BatchOptions struct {
	Limit    int
	MaxChars int
	Delay    time.Duration
	Logger   *zap.Logger
}

// BatchReport counts per-row outcomes.
type BatchReport struct {
	Processed int
	Failed    int
	Empty     int
}

// ExtractSkills runs the recognizer over the first Limit postings, one call per
// row with Delay between calls. A failed row gets "[]" and the batch continues.
// Only context cancellation stops the batch early, in which case the rows done
// so far are returned with the context error.
func ExtractSkills(ctx context.Context, postings []dataset.Posting, rec EntityRecognizer, opts BatchOptions) ([]dataset.SkillRecord, BatchReport, error) {
	log := logger.WithFields(opts.Logger, zap.String("component", "nlp"))
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	n := len(postings)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}

	var report BatchReport
	records := make([]dataset.SkillRecord, 0, n)
	for i := 0; i < n; i++ {
		p := postings[i]
		text := ingestion.Truncate(p.Description, maxChars)

		skills := EmptySkills
		entities, err := rec.RecognizeEntities(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return records, report, ctx.Err()
			}
			report.Failed++
			log.Warn("entity recognition failed", zap.Int(logger.FieldRowID, p.ID), zap.Error(err))
		} else {
			found := SkillsFromEntities(entities)
			if len(found) == 0 {
				report.Empty++
			}
			skills = EncodeSkills(found)
		}

		records = append(records, dataset.SkillRecord{
			ID:              p.ID,
			JobTitle:        p.JobTitle,
			SkillsExtracted: skills,
		})
		report.Processed++
		log.Debug("row processed", zap.Int(logger.FieldRowID, p.ID), zap.String("skills", logger.TruncateForLog(skills, 120)))

		if i < n-1 {
			if err := WaitFor(ctx, opts.Delay); err != nil {
				return records, report, err
			}
		}
	}

	log.Info("skill extraction finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Int("empty", report.Empty),
	)
	return records, report, nil
}

// WaitFor sleeps for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
