package engine

import (
	"encoding/json"
	"testing"
)

func TestIsCorrect_MultipleChoice(t *testing.T) {
	q := Question{
		Type:          MultipleChoice,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: NumberAnswer(2),
	}

	if !q.IsCorrect(NumberAnswer(2)) {
		t.Error("Expected index 2 to be correct")
	}
	if q.IsCorrect(NumberAnswer(1)) {
		t.Error("Expected index 1 to be wrong")
	}
	if q.IsCorrect(BoolAnswer(true)) {
		t.Error("Boolean answer must not match a choice index")
	}
}

func TestIsCorrect_TrueFalse(t *testing.T) {
	q := Question{Type: TrueFalse, CorrectAnswer: BoolAnswer(true)}

	if !q.IsCorrect(BoolAnswer(true)) {
		t.Error("Expected true to be correct")
	}
	if q.IsCorrect(BoolAnswer(false)) {
		t.Error("Expected false to be wrong")
	}

	t.Run("legacy numeric encoding", func(t *testing.T) {
		if !q.IsCorrect(NumberAnswer(1)) {
			t.Error("Expected legacy 1 to mean true")
		}
		if q.IsCorrect(NumberAnswer(0)) {
			t.Error("Expected legacy 0 to mean false")
		}
		if q.IsCorrect(NumberAnswer(2)) {
			t.Error("Numbers other than 0/1 are not booleans")
		}
	})
}

func TestIsCorrect_MoreOrLess(t *testing.T) {
	q := Question{
		Type:          MoreOrLess,
		Option1:       "The Nile",
		Option2:       "The Amazon",
		CorrectAnswer: NumberAnswer(0),
	}

	if !q.IsCorrect(NumberAnswer(0)) {
		t.Error("Expected option 0 to be correct")
	}
	if q.IsCorrect(NumberAnswer(1)) {
		t.Error("Expected option 1 to be wrong")
	}
}

func TestIsCorrect_Numerical(t *testing.T) {
	t.Run("explicit range", func(t *testing.T) {
		q := Question{Type: Numerical, CorrectAnswer: NumberAnswer(100), AcceptableRange: 10}

		if !q.IsCorrect(NumberAnswer(105)) {
			t.Error("105 is within 100±10")
		}
		if !q.IsCorrect(NumberAnswer(90)) {
			t.Error("90 is within 100±10")
		}
		if q.IsCorrect(NumberAnswer(150)) {
			t.Error("150 is outside 100±10")
		}
	})

	t.Run("default 10 percent range", func(t *testing.T) {
		q := Question{Type: Numerical, CorrectAnswer: NumberAnswer(200)}

		if !q.IsCorrect(NumberAnswer(219)) {
			t.Error("219 is within 200±20")
		}
		if q.IsCorrect(NumberAnswer(221)) {
			t.Error("221 is outside 200±20")
		}
	})

	t.Run("boolean answer never matches", func(t *testing.T) {
		q := Question{Type: Numerical, CorrectAnswer: NumberAnswer(1)}
		if q.IsCorrect(BoolAnswer(true)) {
			t.Error("Boolean answer must not match a numerical question")
		}
	})
}

func TestAnswerJSON(t *testing.T) {
	t.Run("number round trip", func(t *testing.T) {
		data, err := json.Marshal(NumberAnswer(3))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != "3" {
			t.Errorf("Expected bare number, got %s", data)
		}

		var a Answer
		if err := json.Unmarshal(data, &a); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if a.Kind != AnswerNumber || a.Number != 3 {
			t.Errorf("Round trip lost value: %+v", a)
		}
	})

	t.Run("bool round trip", func(t *testing.T) {
		data, err := json.Marshal(BoolAnswer(true))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != "true" {
			t.Errorf("Expected bare boolean, got %s", data)
		}

		var a Answer
		if err := json.Unmarshal(data, &a); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if a.Kind != AnswerBool || !a.Bool {
			t.Errorf("Round trip lost value: %+v", a)
		}
	})

	t.Run("rejects strings", func(t *testing.T) {
		var a Answer
		if err := json.Unmarshal([]byte(`"yes"`), &a); err == nil {
			t.Error("Expected error for string answer")
		}
	})
}

func TestQuestionValidate(t *testing.T) {
	valid := []Question{
		{ID: "m1", Type: MultipleChoice, Text: "?", Difficulty: Easy,
			Options: []string{"A", "B", "C", "D"}, CorrectAnswer: NumberAnswer(3)},
		{ID: "t1", Type: TrueFalse, Text: "?", Difficulty: Medium, CorrectAnswer: BoolAnswer(false)},
		{ID: "o1", Type: MoreOrLess, Text: "?", Difficulty: Hard,
			Option1: "X", Option2: "Y", CorrectAnswer: NumberAnswer(1)},
		{ID: "n1", Type: Numerical, Text: "?", Difficulty: Easy, CorrectAnswer: NumberAnswer(42)},
	}
	for _, q := range valid {
		if err := q.Validate(); err != nil {
			t.Errorf("Question %s should validate: %v", q.ID, err)
		}
	}

	invalid := []Question{
		{ID: "", Type: TrueFalse, Text: "?", Difficulty: Easy, CorrectAnswer: BoolAnswer(true)},
		{ID: "x", Type: TrueFalse, Text: "", Difficulty: Easy, CorrectAnswer: BoolAnswer(true)},
		{ID: "x", Type: TrueFalse, Text: "?", Difficulty: "extreme", CorrectAnswer: BoolAnswer(true)},
		{ID: "x", Type: MultipleChoice, Text: "?", Difficulty: Easy,
			Options: []string{"A", "B"}, CorrectAnswer: NumberAnswer(0)},
		{ID: "x", Type: MultipleChoice, Text: "?", Difficulty: Easy,
			Options: []string{"A", "B", "C", "D"}, CorrectAnswer: NumberAnswer(4)},
		{ID: "x", Type: TrueFalse, Text: "?", Difficulty: Easy, CorrectAnswer: NumberAnswer(1)},
		{ID: "x", Type: MoreOrLess, Text: "?", Difficulty: Easy, Option1: "X", CorrectAnswer: NumberAnswer(0)},
		{ID: "x", Type: MoreOrLess, Text: "?", Difficulty: Easy,
			Option1: "X", Option2: "Y", CorrectAnswer: NumberAnswer(2)},
		{ID: "x", Type: "open-ended", Text: "?", Difficulty: Easy, CorrectAnswer: NumberAnswer(0)},
	}
	for i, q := range invalid {
		if err := q.Validate(); err == nil {
			t.Errorf("Invalid question %d should fail validation", i)
		}
	}
}
