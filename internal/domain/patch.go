package domain

import "fmt"

// Patch is a partial edit of one section's record. Nil pointers and nil
// slices mean "leave unchanged"; an explicit empty list clears the field.
type Patch interface {
	Section() Section
	// RenameTo returns the requested new slug, or "" when the slug is unchanged.
	RenameTo() string
	// ApplyTo merges the patch over rec. rec must belong to the same section.
	ApplyTo(rec Record) error
}

// CommonPatch edits the shared fields.
type CommonPatch struct {
	Slug        *string  `json:"slug" validate:"omitempty,slug"`
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Summary     *string  `json:"summary" validate:"omitempty,max=1000"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Tech        []string `json:"tech" validate:"omitempty,max=20,dive,required,max=50"`
	StartDate   *string  `json:"start_date" validate:"omitempty,contentdate"`
	EndDate     *string  `json:"end_date" validate:"omitempty,contentdate"`
	URLs        *URLs    `json:"urls"`
}

type ExperiencePatch struct {
	CommonPatch
	Company          *string  `json:"company" validate:"omitempty,max=200"`
	Role             *string  `json:"role" validate:"omitempty,max=200"`
	EmploymentType   *string  `json:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship freelance"`
	Location         *string  `json:"location" validate:"omitempty,max=200"`
	Responsibilities []string `json:"responsibilities" validate:"omitempty,max=20,dive,required,max=500"`
	Achievements     []string `json:"achievements" validate:"omitempty,max=20,dive,required,max=500"`
	Media            []Media  `json:"media" validate:"omitempty,max=50,dive"`
}

type ProjectPatch struct {
	CommonPatch
	Features     []string `json:"features" validate:"omitempty,max=20,dive,required,max=500"`
	Achievements []string `json:"achievements" validate:"omitempty,max=20,dive,required,max=500"`
	Role         *string  `json:"role" validate:"omitempty,max=200"`
	Deployment   *string  `json:"deployment" validate:"omitempty,max=200"`
	Media        []Media  `json:"media" validate:"omitempty,max=50,dive"`
}

type EducationPatch struct {
	CommonPatch
	Institution  *string  `json:"institution" validate:"omitempty,max=200"`
	Degree       *string  `json:"degree" validate:"omitempty,max=200"`
	Location     *string  `json:"location" validate:"omitempty,max=200"`
	Coursework   []string `json:"coursework" validate:"omitempty,max=30,dive,required,max=200"`
	Achievements []string `json:"achievements" validate:"omitempty,max=20,dive,required,max=500"`
	Media        []Media  `json:"media" validate:"omitempty,max=20,dive"`
}

var (
	_ Patch = (*ExperiencePatch)(nil)
	_ Patch = (*ProjectPatch)(nil)
	_ Patch = (*EducationPatch)(nil)
)

// NewPatch returns an empty patch of the given section, ready to be decoded into.
func NewPatch(section Section) (Patch, error) {
	switch section {
	case SectionExperience:
		return &ExperiencePatch{}, nil
	case SectionProjects:
		return &ProjectPatch{}, nil
	case SectionEducation:
		return &EducationPatch{}, nil
	default:
		return nil, fmt.Errorf("domain: unknown section %q", section)
	}
}

func (p *ExperiencePatch) Section() Section { return SectionExperience }
func (p *ProjectPatch) Section() Section    { return SectionProjects }
func (p *EducationPatch) Section() Section  { return SectionEducation }

func (c *CommonPatch) RenameTo() string {
	if c.Slug == nil {
		return ""
	}
	return *c.Slug
}

func (p *ExperiencePatch) ApplyTo(rec Record) error {
	r, ok := rec.(*Experience)
	if !ok {
		return mismatch(p, rec)
	}
	p.CommonPatch.applyTo(&r.Common)
	setString(&r.Company, p.Company)
	setString(&r.Role, p.Role)
	setString(&r.EmploymentType, p.EmploymentType)
	setString(&r.Location, p.Location)
	setList(&r.Responsibilities, p.Responsibilities)
	setList(&r.Achievements, p.Achievements)
	setList(&r.Media, p.Media)
	return nil
}

func (p *ProjectPatch) ApplyTo(rec Record) error {
	r, ok := rec.(*Project)
	if !ok {
		return mismatch(p, rec)
	}
	p.CommonPatch.applyTo(&r.Common)
	setList(&r.Features, p.Features)
	setList(&r.Achievements, p.Achievements)
	setString(&r.Role, p.Role)
	setString(&r.Deployment, p.Deployment)
	setList(&r.Media, p.Media)
	return nil
}

func (p *EducationPatch) ApplyTo(rec Record) error {
	r, ok := rec.(*Education)
	if !ok {
		return mismatch(p, rec)
	}
	p.CommonPatch.applyTo(&r.Common)
	setString(&r.Institution, p.Institution)
	setString(&r.Degree, p.Degree)
	setString(&r.Location, p.Location)
	setList(&r.Coursework, p.Coursework)
	setList(&r.Achievements, p.Achievements)
	setList(&r.Media, p.Media)
	return nil
}

func (c *CommonPatch) applyTo(dst *Common) {
	setString(&dst.Title, c.Title)
	setString(&dst.Summary, c.Summary)
	setString(&dst.Description, c.Description)
	setList(&dst.Tech, c.Tech)
	setString(&dst.StartDate, c.StartDate)
	setString(&dst.EndDate, c.EndDate)
	if c.URLs != nil {
		u := *c.URLs
		dst.URLs = &u
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setList[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = append([]T{}, v...)
	}
}

func mismatch(p Patch, rec Record) error {
	return fmt.Errorf("domain: cannot apply %s patch to %s record", p.Section(), rec.Section())
}
