// Package entities contains domain entities used across the application.
package entities

// Level is a CEFR proficiency level covered by the test.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
)

// Levels lists all supported levels in ascending order.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2}

// Valid reports whether the level is one of the supported CEFR levels.
func (l Level) Valid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2:
		return true
	}
	return false
}

// Category is a question category.
type Category string

const (
	CategoryVocabulary Category = "vocabulary"
	CategoryGrammar    Category = "grammar"
)

// Categories lists all supported question categories.
var Categories = []Category{CategoryVocabulary, CategoryGrammar}

// Valid reports whether the category is supported.
func (c Category) Valid() bool {
	return c == CategoryVocabulary || c == CategoryGrammar
}

// OptionCount is the required number of answer options per question.
const OptionCount = 4

// Question is an immutable multiple-choice question from the question bank.
// Weight is optional in the bank file; zero means "use the level default".
type Question struct {
	ID           int      `json:"id"`            // unique positive question id
	Text         string   `json:"text"`          // question text shown to the user
	Options      []string `json:"options"`       // exactly 4 answer options
	CorrectIndex int      `json:"correct_index"` // index of the correct option (0-3)
	Level        Level    `json:"level"`         // CEFR level of the question
	Category     Category `json:"category"`      // vocabulary or grammar
	Weight       int      `json:"weight,omitempty"`
}
