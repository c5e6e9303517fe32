package features

import "strings"

// Vectorize builds the feature vector for one prediction.
// Unknown skills are ignored and duplicates collapse to a single 1.
func (s *Schema) Vectorize(rating float64, skills []string) Vector {
	v, _ := s.VectorizeWithReport(rating, skills)
	return v
}

// VectorizeWithReport is Vectorize plus the input skills that matched no slot.
func (s *Schema) VectorizeWithReport(rating float64, skills []string) (Vector, []string) {
	v := make(Vector, len(s.names))
	v[0] = rating

	var unmatched []string
	for _, skill := range skills {
		if i, ok := s.index[SkillFeatureName(skill)]; ok && i > 0 {
			v[i] = 1
			continue
		}
		unmatched = append(unmatched, skill)
	}
	return v, unmatched
}

// VectorizeDescription extracts known skills from free text and vectorizes them.
func (s *Schema) VectorizeDescription(rating float64, description string) Vector {
	return s.Vectorize(rating, ExtractSkills(description, s.Skills()))
}

// PresentSkills reads back the skills whose slot is set to 1, in schema order.
func (s *Schema) PresentSkills(v Vector) []string {
	var skills []string
	for i := 1; i < len(s.names) && i < len(v); i++ {
		if v[i] == 1 {
			skills = append(skills, strings.TrimPrefix(s.names[i], SkillPrefix))
		}
	}
	return skills
}

// ExtractSkills returns the keywords found as case-insensitive substrings of
// description, in keyword order.
func ExtractSkills(description string, knownSkills []string) []string {
	if description == "" {
		return nil
	}
	text := strings.ToLower(description)

	var found []string
	for _, skill := range knownSkills {
		if strings.Contains(text, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	return found
}
