package domain

// Public views are allowlists: a field reaches anonymous callers only if it
// is listed here.

type ExperiencePublic struct {
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	Description      string   `json:"description,omitempty"`
	DescriptionHTML  string   `json:"descriptionHtml,omitempty"`
	Company          string   `json:"company"`
	Role             string   `json:"role"`
	EmploymentType   string   `json:"employment_type"`
	Location         string   `json:"location"`
	Tech             []string `json:"tech"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Media            []Media  `json:"media"`
	URLs             *URLs    `json:"urls,omitempty"`
	Responsibilities []string `json:"responsibilities"`
}

type ProjectPublic struct {
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Description     string   `json:"description,omitempty"`
	DescriptionHTML string   `json:"descriptionHtml,omitempty"`
	Tech            []string `json:"tech"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Media           []Media  `json:"media"`
	URLs            *URLs    `json:"urls,omitempty"`
	Features        []string `json:"features"`
	Role            string   `json:"role,omitempty"`
}

type EducationPublic struct {
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Description     string   `json:"description,omitempty"`
	DescriptionHTML string   `json:"descriptionHtml,omitempty"`
	Institution     string   `json:"institution"`
	Degree          string   `json:"degree"`
	Location        string   `json:"location"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Media           []Media  `json:"media"`
	Coursework      []string `json:"coursework,omitempty"`
}

func (e *Experience) PublicView(slug, descriptionHTML string) any {
	return ExperiencePublic{
		Slug:             slug,
		Title:            e.Title,
		Summary:          e.Summary,
		Description:      e.Description,
		DescriptionHTML:  descriptionHTML,
		Company:          e.Company,
		Role:             e.Role,
		EmploymentType:   e.EmploymentType,
		Location:         e.Location,
		Tech:             orEmpty(e.Tech),
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		Media:            orEmpty(e.Media),
		URLs:             e.URLs,
		Responsibilities: orEmpty(e.Responsibilities),
	}
}

func (p *Project) PublicView(slug, descriptionHTML string) any {
	return ProjectPublic{
		Slug:            slug,
		Title:           p.Title,
		Summary:         p.Summary,
		Description:     p.Description,
		DescriptionHTML: descriptionHTML,
		Tech:            orEmpty(p.Tech),
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Media:           orEmpty(p.Media),
		URLs:            p.URLs,
		Features:        orEmpty(p.Features),
		Role:            p.Role,
	}
}

func (e *Education) PublicView(slug, descriptionHTML string) any {
	return EducationPublic{
		Slug:            slug,
		Title:           e.Title,
		Summary:         e.Summary,
		Description:     e.Description,
		DescriptionHTML: descriptionHTML,
		Institution:     e.Institution,
		Degree:          e.Degree,
		Location:        e.Location,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		Media:           orEmpty(e.Media),
		Coursework:      e.Coursework,
	}
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
