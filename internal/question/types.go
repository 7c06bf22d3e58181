package question

// Type discriminates the answer shape expected for a question.
type Type string

const (
	// TypeMCQ is a single-correct-answer multiple-choice question.
	TypeMCQ Type = "mcq"
	// TypeMSQ is a multi-select question with zero or more correct options.
	TypeMSQ Type = "msq"
	// TypeNumerical expects a free-text numerical or string answer.
	TypeNumerical Type = "numerical"
)

// Normalize maps empty or unrecognized types to the mcq default.
func (t Type) Normalize() Type {
	switch t {
	case TypeMSQ, TypeNumerical:
		return t
	default:
		return TypeMCQ
	}
}

// Question represents a single exam question submitted for solving.
// Questions are immutable once submitted.
type Question struct {
	ID            string   `json:"question_id" yaml:"question_id"`
	Type          Type     `json:"question_type,omitempty" yaml:"question_type"`
	Text          string   `json:"question_text,omitempty" yaml:"question_text"`
	CaseStudyText string   `json:"case_study_text,omitempty" yaml:"case_study_text"`
	ImageURL      string   `json:"image_url,omitempty" yaml:"image_url"`
	Options       []string `json:"options,omitempty" yaml:"options"`
}

// Batch defines the question batch schema loaded from JSON or YAML files.
type Batch struct {
	Version   int        `json:"version" yaml:"version"`
	Questions []Question `json:"questions" yaml:"questions"`
}
