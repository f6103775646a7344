package domain

import "fmt"

// Section names a content collection. The set is closed; every consumer
// dispatches on it with an exhaustive switch.
type Section string

const (
	SectionExperience Section = "experience"
	SectionProjects   Section = "projects"
	SectionEducation  Section = "education"
)

// Sections lists every known section in display order.
var Sections = []Section{SectionExperience, SectionProjects, SectionEducation}

// ParseSection returns the Section named by s.
func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionExperience, SectionProjects, SectionEducation:
		return Section(s), nil
	default:
		return "", fmt.Errorf("domain: unknown section %q", s)
	}
}

func (s Section) String() string {
	return string(s)
}
