package domain

import (
	"fmt"
	"strconv"
	"time"
)

// SchemaVersion is the record layout written by this code. Records carrying a
// newer version are refused on edit rather than rewritten with missing fields.
const SchemaVersion = 1

// DatePresent marks an ongoing end date.
const DatePresent = "present"

const dateLayout = "2006-01-02"

// Media is an image or video attached to a record.
type Media struct {
	Type    string `json:"type" validate:"required,oneof=image video"`
	Src     string `json:"src" validate:"required,max=500"`
	Alt     string `json:"alt,omitempty" validate:"max=200"`
	Caption string `json:"caption,omitempty" validate:"max=500"`
}

// URLs are optional external links of a record.
type URLs struct {
	GitHub  string `json:"github,omitempty" validate:"omitempty,url,max=500"`
	Demo    string `json:"demo,omitempty" validate:"omitempty,url,max=500"`
	Website string `json:"website,omitempty" validate:"omitempty,url,max=500"`
}

// Meta is the bookkeeping stored alongside every record body.
type Meta struct {
	SchemaVersion int        `json:"schemaVersion"`
	IndexEntry    IndexEntry `json:"indexEntry"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	UpdatedBy     string     `json:"updatedBy,omitempty"`
}

// Common holds the fields every section shares.
type Common struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Summary     string   `json:"summary" validate:"required,max=1000"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Tech        []string `json:"tech" validate:"max=20,dive,required,max=50"`
	StartDate   string   `json:"start_date" validate:"required,contentdate"`
	EndDate     string   `json:"end_date" validate:"required,contentdate"`
	URLs        *URLs    `json:"urls,omitempty"`
}

// Record is a content record of one section. It is implemented by
// *Experience, *Project and *Education only.
type Record interface {
	Section() Section
	Fields() *Common
	Metadata() *Meta
	// IndexEntry projects the record into its section index entry.
	IndexEntry(slug string, now time.Time) IndexEntry
	// PublicView returns the allowlisted public projection of the record.
	PublicView(slug, descriptionHTML string) any
}

// Experience is a job or engagement.
type Experience struct {
	Meta `validate:"-"`
	Common
	Company          string   `json:"company" validate:"required,max=200"`
	Role             string   `json:"role" validate:"required,max=200"`
	EmploymentType   string   `json:"employment_type" validate:"required,oneof=full-time part-time contract internship freelance"`
	Location         string   `json:"location" validate:"required,max=200"`
	Responsibilities []string `json:"responsibilities" validate:"required,max=20,dive,required,max=500"`
	Achievements     []string `json:"achievements" validate:"required,max=20,dive,required,max=500"`
	Media            []Media  `json:"media" validate:"max=50,dive"`
}

// Project is a personal or professional project.
type Project struct {
	Meta `validate:"-"`
	Common
	Features     []string `json:"features" validate:"required,max=20,dive,required,max=500"`
	Achievements []string `json:"achievements" validate:"required,max=20,dive,required,max=500"`
	Role         string   `json:"role,omitempty" validate:"max=200"`
	Deployment   string   `json:"deployment,omitempty" validate:"max=200"`
	Media        []Media  `json:"media" validate:"max=50,dive"`
}

// Education is a degree or course of study.
type Education struct {
	Meta `validate:"-"`
	Common
	Institution  string   `json:"institution" validate:"required,max=200"`
	Degree       string   `json:"degree" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=200"`
	Coursework   []string `json:"coursework,omitempty" validate:"max=30,dive,required,max=200"`
	Achievements []string `json:"achievements,omitempty" validate:"max=20,dive,required,max=500"`
	Media        []Media  `json:"media" validate:"max=20,dive"`
}

var (
	_ Record = (*Experience)(nil)
	_ Record = (*Project)(nil)
	_ Record = (*Education)(nil)
)

// NewRecord returns an empty record of the given section, ready to be decoded into.
func NewRecord(section Section) (Record, error) {
	switch section {
	case SectionExperience:
		return &Experience{}, nil
	case SectionProjects:
		return &Project{}, nil
	case SectionEducation:
		return &Education{}, nil
	default:
		return nil, fmt.Errorf("domain: unknown section %q", section)
	}
}

func (e *Experience) Section() Section { return SectionExperience }
func (p *Project) Section() Section    { return SectionProjects }
func (e *Education) Section() Section  { return SectionEducation }

func (e *Experience) Fields() *Common { return &e.Common }
func (p *Project) Fields() *Common    { return &p.Common }
func (e *Education) Fields() *Common  { return &e.Common }

func (e *Experience) Metadata() *Meta { return &e.Meta }
func (p *Project) Metadata() *Meta    { return &p.Meta }
func (e *Education) Metadata() *Meta  { return &e.Meta }

func (e *Experience) IndexEntry(slug string, now time.Time) IndexEntry {
	return newIndexEntry(slug, &e.Common, e.Media, e.Tech, now)
}

func (p *Project) IndexEntry(slug string, now time.Time) IndexEntry {
	return newIndexEntry(slug, &p.Common, p.Media, p.Tech, now)
}

func (e *Education) IndexEntry(slug string, now time.Time) IndexEntry {
	return newIndexEntry(slug, &e.Common, e.Media, e.Coursework, now)
}

func newIndexEntry(slug string, c *Common, media []Media, tags []string, now time.Time) IndexEntry {
	if tags == nil {
		tags = []string{}
	}
	return IndexEntry{
		Slug:      slug,
		Title:     c.Title,
		Summary:   c.Summary,
		Cover:     coverOf(media),
		Tags:      append([]string(nil), tags...),
		Year:      YearOf(c.StartDate, now),
		UpdatedAt: now.UTC(),
	}
}

func coverOf(media []Media) string {
	for _, m := range media {
		if m.Type == "image" {
			return m.Src
		}
	}
	return ""
}

// YearOf returns the calendar year of a content date. "present" and
// unparseable values resolve to the year of now.
func YearOf(date string, now time.Time) int {
	if date != DatePresent && len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return now.Year()
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date or "present".
func ValidDate(s string) bool {
	if s == DatePresent {
		return true
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
