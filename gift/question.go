package gift

type Kind int

const (
	KindEmpty Kind = iota
	KindCategory
	KindDescription
	KindEssay
	KindTrueFalse
	KindMultipleChoice
	KindShortAnswer
	KindMatching
	KindNumerical
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindCategory:
		return "category"
	case KindDescription:
		return "description"
	case KindEssay:
		return "essay"
	case KindTrueFalse:
		return "true-false"
	case KindMultipleChoice:
		return "multiple-choice"
	case KindShortAnswer:
		return "short-answer"
	case KindMatching:
		return "matching"
	case KindNumerical:
		return "numerical"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Question is the parsed form of one question block.
type Question struct {
	Kind     Kind     `json:"kind"`
	Category string   `json:"category,omitempty"`
	Title    string   `json:"title,omitempty"`
	Format   string   `json:"format,omitempty"`
	Stem     string   `json:"stem,omitempty"`
	Answers  []Answer `json:"answers,omitempty"`
	Trailer  string   `json:"trailer,omitempty"`

	// Truth and Feedback are only set for true-false questions.
	Truth    bool     `json:"truth,omitempty"`
	Feedback []string `json:"feedback,omitempty"`
}

type Answer struct {
	Text     string   `json:"text"`
	Correct  bool     `json:"correct"`
	Weight   *float64 `json:"weight,omitempty"`
	Match    string   `json:"match,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
}
