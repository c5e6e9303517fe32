package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/hr-pulse/internal/prompts"
)

// Entity categories kept as skills.
const (
	CategorySkill   = "Skill"
	CategoryProduct = "Product"
)

// Entity is one recognized span.
type Entity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// EntityRecognizer recognizes entities in a single text.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]Entity, error)
}

// LLMRecognizer implements EntityRecognizer on top of a Client.
type LLMRecognizer struct {
	client  Client
	timeout time.Duration
}

// NewLLMRecognizer wraps client. A zero timeout means no per-call deadline.
func NewLLMRecognizer(client Client, timeout time.Duration) *LLMRecognizer {
	return &LLMRecognizer{client: client, timeout: timeout}
}

// RecognizeEntities sends one text to the model and parses its entity list.
func (r *LLMRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	raw, err := r.client.GenerateJSON(ctx, prompts.Format(
		prompts.MustGet(prompts.NLPFile, prompts.EntityRecognition),
		map[string]string{"Text": text},
	))
	if err != nil {
		return nil, err
	}
	return ParseEntities(raw)
}

// ParseEntities accepts {"entities": [...]} or a bare array.
func ParseEntities(raw string) ([]Entity, error) {
	raw = CleanJSONBlock(raw)
	if raw == "" {
		return nil, errors.New("empty entity response")
	}

	if strings.HasPrefix(raw, "[") {
		var entities []Entity
		if err := json.Unmarshal([]byte(raw), &entities); err != nil {
			return nil, fmt.Errorf("failed to parse entity response: %w", err)
		}
		return entities, nil
	}

	var wrapped struct {
		Entities []Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse entity response: %w", err)
	}
	return wrapped.Entities, nil
}

// SkillsFromEntities keeps Skill and Product entities, lowercased, deduplicated
// and sorted.
func SkillsFromEntities(entities []Entity) []string {
	seen := make(map[string]struct{}, len(entities))
	skills := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Category != CategorySkill && e.Category != CategoryProduct {
			continue
		}
		s := strings.ToLower(strings.TrimSpace(e.Text))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// EncodeSkills renders skills as the JSON array stored in skills_extracted.
func EncodeSkills(skills []string) string {
	if len(skills) == 0 {
		return EmptySkills
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return EmptySkills
	}
	return string(data)
}

// EmptySkills is the skills_extracted value for a row with no skills.
const EmptySkills = "[]"
