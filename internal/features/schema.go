// Package features defines the feature schema shared by training and prediction
// and turns a (rating, skills) pair into the positional vector the model expects.
package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// RatingFeature is the name of slot 0.
	RatingFeature = "Rating"
	// SkillPrefix is prepended to a lowercased keyword to form its slot name.
	SkillPrefix = "skill_"
)

// KnownSkills is the curated keyword list the model is trained on. Order here is slot order.
var KnownSkills = []string{
	"python", "sql", "aws", "machine learning", "deep learning",
	"hadoop", "spark", "java", "c++", "tableau", "power bi",
	"excel", "nosql", "azure", "gcp", "docker", "kubernetes",
	"nlp", "statistics", "tensorflow", "pytorch",
}

// Vector is one value per schema slot.
type Vector []float64

// Schema is an ordered, immutable list of feature names.
type Schema struct {
	names []string
	index map[string]int
}

// SkillFeatureName returns the slot name for a skill keyword.
func SkillFeatureName(skill string) string {
	return SkillPrefix + strings.ToLower(skill)
}

// BuildSchema builds the schema [Rating, skill_<k>...] from the given keywords.
// Keywords that collide after lowercasing keep their first position.
func BuildSchema(knownSkills []string) *Schema {
	names := make([]string, 0, len(knownSkills)+1)
	names = append(names, RatingFeature)

	seen := make(map[string]bool, len(knownSkills))
	for _, skill := range knownSkills {
		name := SkillFeatureName(skill)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return newSchema(names)
}

// NewSchema rebuilds a schema from persisted feature names.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, &SchemaError{Message: "no feature names"}
	}
	if names[0] != RatingFeature {
		return nil, &SchemaError{Message: fmt.Sprintf("first feature must be %q, got %q", RatingFeature, names[0])}
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, &SchemaError{Message: fmt.Sprintf("duplicate feature %q", name)}
		}
		seen[name] = true
		if i > 0 && !strings.HasPrefix(name, SkillPrefix) {
			return nil, &SchemaError{Message: fmt.Sprintf("feature %q lacks prefix %q", name, SkillPrefix)}
		}
	}

	return newSchema(append([]string(nil), names...)), nil
}

func newSchema(names []string) *Schema {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return &Schema{names: names, index: index}
}

// Names returns a copy of the feature names in slot order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of slots.
func (s *Schema) Len() int {
	return len(s.names)
}

// Skills returns the keywords behind the skill slots, in slot order.
func (s *Schema) Skills() []string {
	skills := make([]string, 0, len(s.names)-1)
	for _, name := range s.names[1:] {
		skills = append(skills, strings.TrimPrefix(name, SkillPrefix))
	}
	return skills
}

// Fingerprint is the hex SHA-256 of the newline-joined names.
// Two schemas with the same fingerprint vectorize identically.
func (s *Schema) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.Join(s.names, "\n")))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both schemas have the same names in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.names) != len(other.names) {
		return false
	}
	for i := range s.names {
		if s.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

// SchemaError reports an invalid list of feature names.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return "invalid feature schema: " + e.Message
}
