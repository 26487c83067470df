package headhunter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string
	ID    string `json:"id,omitempty"`
}

type ResumeDetails struct {
	ID    string
	Title string
	Raw   map[string]any
}

func (c *Client) getResumes(id string) (*Resumes, error) {
	items, err := c.getItems(fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = mapstructure.Decode(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	titles := make([]string, 0, len(r.Items))

	for _, v := range r.Items {
		titles = append(titles, v.Title)
	}

	return titles
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if strings.EqualFold(strings.TrimSpace(resume.Title), strings.TrimSpace(title)) {
			return resume
		}
	}

	return nil
}

func (c *Client) GetResumeDetails(id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	var raw map[string]any
	if err := c.getJSON(fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	return &ResumeDetails{
		ID:    valueAsString(raw["id"]),
		Title: valueAsString(raw["title"]),
		Raw:   raw,
	}, nil
}

// ResumeText finds the candidate's resume by title and renders it as plain
// text interview context. An empty title picks the only resume, if there is
// exactly one.
func (c *Client) ResumeText(title string) (string, error) {
	resumes, err := c.GetMineResumes()
	if err != nil {
		return "", fmt.Errorf("getting mine resumes: %w", err)
	}

	var selected *Resume
	switch {
	case strings.TrimSpace(title) != "":
		selected = resumes.FindByTitle(title)
	case resumes.Len() == 1:
		selected = resumes.Items[0]
	}

	if selected == nil {
		return "", fmt.Errorf("resume %q not found, existing titles: %s", title, strings.Join(resumes.Titles(), ", "))
	}

	details, err := c.GetResumeDetails(selected.ID)
	if err != nil {
		return "", fmt.Errorf("get resume details: %w", err)
	}

	return details.Text(), nil
}

// resumeDocument holds the hh.ru resume fields worth showing to an interviewer.
type resumeDocument struct {
	Title           string
	Skills          string
	SkillSet        []string `mapstructure:"skill_set"`
	TotalExperience struct {
		Months int
	} `mapstructure:"total_experience"`
	Experience []struct {
		Company     string
		Position    string
		Start       string
		End         string
		Description string
	}
	Education struct {
		Primary []struct {
			Name         string
			Organization string
			Result       string
			Year         int
		}
	}
	Language []struct {
		Name  string
		Level struct {
			Name string
		}
	}
}

// Text renders the resume as plain text. Unknown or malformed fields are
// skipped.
func (d *ResumeDetails) Text() string {
	var doc resumeDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err == nil {
		_ = decoder.Decode(d.Raw)
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = d.Title
	}
	line("Title: %s", title)

	if m := doc.TotalExperience.Months; m > 0 {
		line("Total experience: %d years %d months", m/12, m%12)
	}

	if len(doc.SkillSet) > 0 {
		skills := append([]string{}, doc.SkillSet...)
		sort.Strings(skills)
		line("Key skills: %s", strings.Join(skills, ", "))
	}

	if len(doc.Experience) > 0 {
		line("\nExperience:")
		for _, e := range doc.Experience {
			end := e.End
			if end == "" {
				end = "present"
			}
			line("- %s at %s (%s - %s)", e.Position, e.Company, e.Start, end)
			if desc := strings.TrimSpace(e.Description); desc != "" {
				line("  %s", strings.ReplaceAll(desc, "\n", "\n  "))
			}
		}
	}

	if len(doc.Education.Primary) > 0 {
		line("\nEducation:")
		for _, e := range doc.Education.Primary {
			line("- %s, %s (%d)", e.Name, strings.TrimSpace(e.Organization+" "+e.Result), e.Year)
		}
	}

	if len(doc.Language) > 0 {
		langs := make([]string, 0, len(doc.Language))
		for _, l := range doc.Language {
			langs = append(langs, strings.TrimSpace(l.Name+" "+l.Level.Name))
		}
		line("\nLanguages: %s", strings.Join(langs, "; "))
	}

	if about := strings.TrimSpace(doc.Skills); about != "" {
		line("\nAbout:\n%s", about)
	}

	return strings.TrimSpace(b.String())
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
