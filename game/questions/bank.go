package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

// Bank is the local fixed question bank, the terminal fallback of every
// chain. It never performs I/O at generation time and never fails unless it
// is empty.
type Bank struct {
	questions []engine.Question
}

// NewBank returns a bank over the built-in question set.
func NewBank() *Bank {
	return &Bank{questions: defaultBank}
}

// NewBankFromFile returns a bank over the built-in set merged with extra
// questions loaded from a JSON file. The file holds either a bare array of
// questions or an object with a "questions" array; every entry is validated.
func NewBankFromFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	var extra []engine.Question
	if err := json.Unmarshal(data, &extra); err != nil {
		var wrapped struct {
			Questions []engine.Question `json:"questions"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse question file: %w", err)
		}
		extra = wrapped.Questions
	}

	for i := range extra {
		if err := extra[i].Validate(); err != nil {
			return nil, fmt.Errorf("question file %s: %w", path, err)
		}
	}

	merged := append(append([]engine.Question{}, defaultBank...), extra...)
	return &Bank{questions: merged}, nil
}

func (b *Bank) Name() string { return "local-bank" }

// Size returns the number of questions in the bank.
func (b *Bank) Size() int { return len(b.questions) }

// Generate draws up to count questions without replacement, shuffled. It
// returns fewer than requested when the matching pool is smaller than the
// round count.
func (b *Bank) Generate(ctx context.Context, count int, opts Options) ([]engine.Question, error) {
	pool := b.questions
	if len(opts.Categories) > 0 || len(opts.Difficulties) > 0 {
		pool = filter(pool, opts)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: bank has no matching questions", ErrUnavailable)
	}

	shuffled := append([]engine.Question(nil), pool...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count], nil
}

func filter(pool []engine.Question, opts Options) []engine.Question {
	var out []engine.Question
	for _, q := range pool {
		if len(opts.Categories) > 0 && !containsString(opts.Categories, q.Category) {
			continue
		}
		if len(opts.Difficulties) > 0 && !containsDifficulty(opts.Difficulties, q.Difficulty) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsDifficulty(list []engine.Difficulty, d engine.Difficulty) bool {
	for _, v := range list {
		if v == d {
			return true
		}
	}
	return false
}

// defaultBank is the built-in question set, covering every question variant
// so a full game is playable offline when no remote generator is configured.
var defaultBank = []engine.Question{
	{
		ID: "q1", Type: engine.MultipleChoice,
		Text: "What percentage of the human body is made up of water?", Category: "Biology", Difficulty: engine.Easy,
		Options:       []string{"30-40%", "50-60%", "60-70%", "80-90%"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "The human body is approximately 60-70% water, varying by age, sex, and body composition.",
	},
	{
		ID: "q2", Type: engine.MultipleChoice,
		Text: "How long does it take for light from the Sun to reach Earth?", Category: "Physics", Difficulty: engine.Medium,
		Options:       []string{"8 seconds", "8 minutes", "8 hours", "8 days"},
		CorrectAnswer: engine.NumberAnswer(1),
		Explanation:   "Light from the Sun takes approximately 8 minutes and 20 seconds to reach Earth, traveling at 299,792 km/s.",
	},
	{
		ID: "q3", Type: engine.MultipleChoice,
		Text: "What is the most abundant gas in Earth's atmosphere?", Category: "Earth Science", Difficulty: engine.Easy,
		Options:       []string{"Oxygen", "Carbon Dioxide", "Nitrogen", "Argon"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Nitrogen makes up about 78% of Earth's atmosphere, while oxygen is around 21%.",
	},
	{
		ID: "q4", Type: engine.MultipleChoice,
		Text: "At what temperature are Celsius and Fahrenheit equal?", Category: "Physics", Difficulty: engine.Hard,
		Options:       []string{"-40°", "-20°", "0°", "-273°"},
		CorrectAnswer: engine.NumberAnswer(0),
		Explanation:   "At -40 degrees, both Celsius and Fahrenheit scales show the same value.",
	},
	{
		ID: "q5", Type: engine.MultipleChoice,
		Text: "How many bones does an adult human have?", Category: "Biology", Difficulty: engine.Medium,
		Options:       []string{"186", "206", "226", "246"},
		CorrectAnswer: engine.NumberAnswer(1),
		Explanation:   "Adults have 206 bones, while babies are born with about 270 that fuse together as they grow.",
	},
	{
		ID: "q6", Type: engine.MultipleChoice,
		Text: "What is the speed of sound at sea level?", Category: "Physics", Difficulty: engine.Medium,
		Options:       []string{"343 m/s", "500 m/s", "1000 m/s", "1500 m/s"},
		CorrectAnswer: engine.NumberAnswer(0),
		Explanation:   "Sound travels at approximately 343 meters per second (1,235 km/h) at sea level and 20°C.",
	},
	{
		ID: "q7", Type: engine.MultipleChoice,
		Text: "What is the pH of pure water?", Category: "Chemistry", Difficulty: engine.Easy,
		Options:       []string{"5", "7", "9", "11"},
		CorrectAnswer: engine.NumberAnswer(1),
		Explanation:   "Pure water has a pH of 7, which is neutral - neither acidic nor basic.",
	},
	{
		ID: "q8", Type: engine.MultipleChoice,
		Text: "How many planets in our solar system have rings?", Category: "Astronomy", Difficulty: engine.Hard,
		Options:       []string{"1", "2", "4", "6"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Four planets have rings: Jupiter, Saturn, Uranus, and Neptune. Saturn's are the most visible.",
	},
	{
		ID: "q9", Type: engine.MultipleChoice,
		Text: "What is the smallest unit of life?", Category: "Biology", Difficulty: engine.Easy,
		Options:       []string{"Atom", "Molecule", "Cell", "Organism"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "The cell is the smallest unit of life that can function independently.",
	},
	{
		ID: "q10", Type: engine.MultipleChoice,
		Text: "How many hearts does an octopus have?", Category: "Biology", Difficulty: engine.Medium,
		Options:       []string{"1", "2", "3", "4"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Octopuses have three hearts: two pump blood to the gills, and one pumps it to the rest of the body.",
	},
	{
		ID: "q11", Type: engine.MultipleChoice,
		Text: "What is the chemical symbol for gold?", Category: "Chemistry", Difficulty: engine.Easy,
		Options:       []string{"Go", "Gd", "Au", "Ag"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Au comes from the Latin word \"aurum\" meaning gold.",
	},
	{
		ID: "q12", Type: engine.MultipleChoice,
		Text: "How long is one day on Mars?", Category: "Astronomy", Difficulty: engine.Hard,
		Options:       []string{"20 hours", "24 hours", "24.6 hours", "30 hours"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "A day on Mars (called a \"sol\") is 24 hours, 39 minutes, and 35 seconds.",
	},
	{
		ID: "q13", Type: engine.MultipleChoice,
		Text: "What is the hardest natural substance on Earth?", Category: "Geology", Difficulty: engine.Easy,
		Options:       []string{"Steel", "Diamond", "Titanium", "Granite"},
		CorrectAnswer: engine.NumberAnswer(1),
		Explanation:   "Diamond is the hardest naturally occurring substance, rating 10 on the Mohs scale.",
	},
	{
		ID: "q14", Type: engine.MultipleChoice,
		Text: "How many teeth does an adult human typically have?", Category: "Biology", Difficulty: engine.Easy,
		Options:       []string{"28", "30", "32", "34"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Adults typically have 32 teeth, including 4 wisdom teeth.",
	},
	{
		ID: "q15", Type: engine.MultipleChoice,
		Text: "What percentage of DNA do humans share with chimpanzees?", Category: "Biology", Difficulty: engine.Medium,
		Options:       []string{"85%", "90%", "98%", "99.5%"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Humans and chimpanzees share approximately 98-99% of their DNA.",
	},
	{
		ID: "q16", Type: engine.MultipleChoice,
		Text: "What is the smallest bone in the human body?", Category: "Biology", Difficulty: engine.Medium,
		Options:       []string{"Stapes (in ear)", "Finger bone", "Toe bone", "Nose bone"},
		CorrectAnswer: engine.NumberAnswer(0),
		Explanation:   "The stapes in the middle ear is the smallest bone, measuring about 2.8mm.",
	},
	{
		ID: "q17", Type: engine.MultipleChoice,
		Text: "How many Earths could fit inside the Sun?", Category: "Astronomy", Difficulty: engine.Hard,
		Options:       []string{"1,000", "10,000", "100,000", "1,300,000"},
		CorrectAnswer: engine.NumberAnswer(3),
		Explanation:   "The Sun is so large that approximately 1.3 million Earths could fit inside it.",
	},
	{
		ID: "q18", Type: engine.MultipleChoice,
		Text: "Which element has the atomic number 1?", Category: "Chemistry", Difficulty: engine.Easy,
		Options:       []string{"Helium", "Oxygen", "Hydrogen", "Carbon"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "Hydrogen is the first element on the periodic table with atomic number 1.",
	},
	{
		ID: "q19", Type: engine.MultipleChoice,
		Text: "How long does it take for the Moon to orbit Earth?", Category: "Astronomy", Difficulty: engine.Medium,
		Options:       []string{"7 days", "14 days", "27.3 days", "30 days"},
		CorrectAnswer: engine.NumberAnswer(2),
		Explanation:   "The Moon takes 27.3 days to complete one orbit around Earth (sidereal month).",
	},
	{
		ID: "q20", Type: engine.MultipleChoice,
		Text: "What is the largest organ in the human body?", Category: "Biology", Difficulty: engine.Easy,
		Options:       []string{"Heart", "Brain", "Liver", "Skin"},
		CorrectAnswer: engine.NumberAnswer(3),
		Explanation:   "The skin is the largest organ, covering about 20 square feet in adults.",
	},
	{
		ID: "q21", Type: engine.TrueFalse,
		Text: "Sound travels faster in water than in air.", Category: "Physics", Difficulty: engine.Easy,
		CorrectAnswer: engine.BoolAnswer(true),
		Explanation:   "Sound travels about 4.3 times faster in water (~1,480 m/s) than in air (~343 m/s).",
	},
	{
		ID: "q22", Type: engine.TrueFalse,
		Text: "The Great Wall of China is visible from the Moon with the naked eye.", Category: "Geography", Difficulty: engine.Medium,
		CorrectAnswer: engine.BoolAnswer(false),
		Explanation:   "From the Moon, no individual human structure is visible without aid; even from low orbit the wall is barely discernible.",
	},
	{
		ID: "q23", Type: engine.TrueFalse,
		Text: "Venus is the hottest planet in the solar system.", Category: "Astronomy", Difficulty: engine.Medium,
		CorrectAnswer: engine.BoolAnswer(true),
		Explanation:   "Venus's dense CO₂ atmosphere traps heat, keeping its surface around 465°C - hotter than Mercury.",
	},
	{
		ID: "q24", Type: engine.TrueFalse,
		Text: "Humans have more than five senses.", Category: "Biology", Difficulty: engine.Easy,
		CorrectAnswer: engine.BoolAnswer(true),
		Explanation:   "Beyond the classic five, humans sense balance, temperature, pain, and body position, among others.",
	},
	{
		ID: "q25", Type: engine.MoreOrLess,
		Text: "Which river is longer?", Category: "Geography", Difficulty: engine.Medium,
		Option1:       "The Nile",
		Option2:       "The Amazon",
		CorrectAnswer: engine.NumberAnswer(0),
		Explanation:   "The Nile is usually measured at about 6,650 km against the Amazon's 6,400 km, though the margin is debated.",
	},
	{
		ID: "q26", Type: engine.MoreOrLess,
		Text: "Which has more bones: a human hand or a human foot?", Category: "Biology", Difficulty: engine.Hard,
		Option1:       "Hand",
		Option2:       "Foot",
		CorrectAnswer: engine.NumberAnswer(0),
		Explanation:   "A hand has 27 bones; a foot has 26.",
	},
	{
		ID: "q27", Type: engine.MoreOrLess,
		Text: "Which weighs more: all the ants on Earth or all the humans?", Category: "Biology", Difficulty: engine.Hard,
		Option1:       "Ants",
		Option2:       "Humans",
		CorrectAnswer: engine.NumberAnswer(1),
		Explanation:   "Recent estimates put ant biomass around 12 megatons of carbon, well below humanity's roughly 60.",
	},
	{
		ID: "q28", Type: engine.Numerical,
		Text: "How many elements are on the periodic table?", Category: "Chemistry", Difficulty: engine.Medium,
		CorrectAnswer:   engine.NumberAnswer(118),
		AcceptableRange: 2,
		Explanation:     "As of 2024, there are 118 confirmed elements on the periodic table.",
	},
	{
		ID: "q29", Type: engine.Numerical,
		Text: "How many years does it take for Pluto to orbit the Sun?", Category: "Astronomy", Difficulty: engine.Hard,
		CorrectAnswer:   engine.NumberAnswer(248),
		AcceptableRange: 15,
		Unit:            "years",
		Explanation:     "Pluto takes about 248 Earth years to complete one orbit around the Sun.",
	},
	{
		ID: "q30", Type: engine.Numerical,
		Text: "What is the boiling point of water at sea level in Fahrenheit?", Category: "Physics", Difficulty: engine.Easy,
		CorrectAnswer:   engine.NumberAnswer(212),
		AcceptableRange: 0.5,
		Unit:            "°F",
		Explanation:     "Water boils at 212°F (100°C) at sea level under normal atmospheric pressure.",
	},
}
