package engine

import (
	"encoding/json"
	"fmt"
	"math"
)

// QuestionType discriminates the question variants.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	MoreOrLess     QuestionType = "more-or-less"
	Numerical      QuestionType = "numerical"
)

// Difficulty buckets questions for generation and display.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Question is a tagged union over the four supported variants. Which fields
// are meaningful depends on Type:
//
//	multiple-choice: Options (4 entries), CorrectAnswer = option index
//	true-false:      CorrectAnswer = boolean
//	more-or-less:    Option1/Option2, CorrectAnswer = 0 or 1
//	numerical:       CorrectAnswer = value, Unit, AcceptableRange
//
// Questions are immutable once produced by a question source.
type Question struct {
	ID              string       `json:"id"`
	Type            QuestionType `json:"type"`
	Text            string       `json:"text"`
	Category        string       `json:"category"`
	Difficulty      Difficulty   `json:"difficulty"`
	Options         []string     `json:"options,omitempty"`
	Option1         string       `json:"option1,omitempty"`
	Option2         string       `json:"option2,omitempty"`
	CorrectAnswer   Answer       `json:"correctAnswer"`
	Unit            string       `json:"unit,omitempty"`
	AcceptableRange float64      `json:"acceptableRange,omitempty"`
	Explanation     string       `json:"explanation"`
}

// IsCorrect checks an answer against the question, dispatching on the
// variant. Numerical answers are accepted within AcceptableRange of the
// correct value, defaulting to 10% of the value when no range is set.
func (q *Question) IsCorrect(a Answer) bool {
	switch q.Type {
	case MultipleChoice, MoreOrLess:
		return a.Kind == AnswerNumber && a.Number == q.CorrectAnswer.Number
	case TrueFalse:
		b, ok := a.asBool()
		return ok && b == q.CorrectAnswer.Bool
	case Numerical:
		if a.Kind != AnswerNumber {
			return false
		}
		rng := q.AcceptableRange
		if rng == 0 {
			rng = math.Abs(q.CorrectAnswer.Number) * 0.1
		}
		return math.Abs(a.Number-q.CorrectAnswer.Number) <= rng
	}
	return false
}

// Validate checks the structural invariants of a question, used when loading
// external question files.
func (q *Question) Validate() error {
	if q.ID == "" || q.Text == "" {
		return fmt.Errorf("question %q: id and text are required", q.ID)
	}
	switch q.Difficulty {
	case Easy, Medium, Hard:
	default:
		return fmt.Errorf("question %q: unknown difficulty %q", q.ID, q.Difficulty)
	}
	switch q.Type {
	case MultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("question %q: multiple-choice needs 4 options, got %d", q.ID, len(q.Options))
		}
		if q.CorrectAnswer.Kind != AnswerNumber || q.CorrectAnswer.Number < 0 || q.CorrectAnswer.Number > 3 {
			return fmt.Errorf("question %q: correct answer must be an option index 0-3", q.ID)
		}
	case TrueFalse:
		if q.CorrectAnswer.Kind != AnswerBool {
			return fmt.Errorf("question %q: correct answer must be a boolean", q.ID)
		}
	case MoreOrLess:
		if q.Option1 == "" || q.Option2 == "" {
			return fmt.Errorf("question %q: more-or-less needs option1 and option2", q.ID)
		}
		if q.CorrectAnswer.Kind != AnswerNumber || (q.CorrectAnswer.Number != 0 && q.CorrectAnswer.Number != 1) {
			return fmt.Errorf("question %q: correct answer must be 0 or 1", q.ID)
		}
	case Numerical:
		if q.CorrectAnswer.Kind != AnswerNumber {
			return fmt.Errorf("question %q: correct answer must be a number", q.ID)
		}
	default:
		return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// AnswerKind discriminates the two answer encodings.
type AnswerKind int

const (
	AnswerNumber AnswerKind = iota
	AnswerBool
)

// Answer is a submitted or correct answer: a number for multiple-choice,
// more-or-less and numerical questions, a boolean for true-false.
type Answer struct {
	Kind   AnswerKind
	Number float64
	Bool   bool
}

// NumberAnswer wraps a numeric answer value.
func NumberAnswer(v float64) Answer { return Answer{Kind: AnswerNumber, Number: v} }

// BoolAnswer wraps a boolean answer value.
func BoolAnswer(v bool) Answer { return Answer{Kind: AnswerBool, Bool: v} }

// asBool normalizes an answer for true/false comparison. Legacy clients
// encode true/false as 1/0; that coercion lives here and nowhere else.
func (a Answer) asBool() (bool, bool) {
	switch a.Kind {
	case AnswerBool:
		return a.Bool, true
	case AnswerNumber:
		switch a.Number {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

// MarshalJSON encodes the answer as a bare number or boolean, matching the
// client wire format.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Kind == AnswerBool {
		return json.Marshal(a.Bool)
	}
	return json.Marshal(a.Number)
}

// UnmarshalJSON accepts a bare number or boolean.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = BoolAnswer(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = NumberAnswer(n)
		return nil
	}
	return fmt.Errorf("answer must be a number or a boolean")
}
