package resume

// Wizard steps in completion order.
const (
	StepBasics        = "basics"
	StepEducation     = "education"
	StepExperience    = "experience"
	StepSelfPromotion = "self_promotion"
	StepSummary       = "summary"
	StepDone          = "done"
)

// Steps lists the valid wizard steps
var Steps = []string{StepBasics, StepEducation, StepExperience, StepSelfPromotion, StepSummary, StepDone}

// Profile is one user's wizard state: the basics plus the two
// generated free-text sections. Owned by an anonymous key.
type Profile struct {
	ID            string   `json:"id,omitempty"`
	FullName      string   `json:"full_name"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	JobTitle      string   `json:"job_title,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	SelfPromotion string   `json:"self_promotion,omitempty"`
	CareerSummary string   `json:"career_summary,omitempty"`
	WizardStep    string   `json:"wizard_step,omitempty"`
	CreatedTime   string   `json:"created_time,omitempty"`
}

// Education is one schooling entry in the profile's education list
type Education struct {
	ID        string `json:"id,omitempty"`
	School    string `json:"school"`
	Degree    string `json:"degree,omitempty"`
	Field     string `json:"field,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Note      string `json:"note,omitempty"`
	Position  int    `json:"position"`
}

// Experience is one employment entry in the profile's experience list
type Experience struct {
	ID          string `json:"id,omitempty"`
	Company     string `json:"company"`
	Title       string `json:"title,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}
