// Package catalog loads the static assessment data: the ordered question
// bank and the per-classification content profiles. Both are validated once
// at load time and read-only afterwards, so they can be shared freely
// across concurrent callers.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"personabot/internal/domain"
)

var (
	ErrInvalidConfig    = errors.New("invalid catalog config")
	ErrQuestionIndex    = errors.New("question index out of range")
	ErrQuestionNotFound = errors.New("question not found")
)

// QuestionBank is the immutable ordered catalog of assessment items.
// Canonical order is the document order of the source file; the loader
// never reorders or deduplicates.
type QuestionBank struct {
	questions []domain.Question
	byID      map[string]int
}

type questionBankDoc struct {
	Questions []domain.Question `yaml:"questions"`
}

// LoadQuestionBank reads and validates the question bank from a YAML file.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseQuestionBank(data)
}

// ParseQuestionBank builds a validated bank from raw YAML.
func ParseQuestionBank(data []byte) (*QuestionBank, error) {
	var doc questionBankDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse questions: %v", ErrInvalidConfig, err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("%w: question bank is empty", ErrInvalidConfig)
	}

	byID := make(map[string]int, len(doc.Questions))
	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question at position %d has no id", ErrInvalidConfig, i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidConfig, q.ID)
		}
		if !q.Dimension.Valid() {
			return nil, fmt.Errorf("%w: question %q has unknown dimension %q", ErrInvalidConfig, q.ID, q.Dimension)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %q needs at least 2 options, has %d", ErrInvalidConfig, q.ID, len(q.Options))
		}
		for j, opt := range q.Options {
			if opt.Weight < domain.MinOptionWeight || opt.Weight > domain.MaxOptionWeight {
				return nil, fmt.Errorf("%w: question %q option %d weight %d outside [%d, %d]",
					ErrInvalidConfig, q.ID, j, opt.Weight, domain.MinOptionWeight, domain.MaxOptionWeight)
			}
		}
		byID[q.ID] = i
	}

	return &QuestionBank{questions: doc.Questions, byID: byID}, nil
}

// Get returns the question at the given canonical position.
func (b *QuestionBank) Get(index int) (domain.Question, error) {
	if index < 0 || index >= len(b.questions) {
		return domain.Question{}, fmt.Errorf("%w: index %d, bank size %d", ErrQuestionIndex, index, len(b.questions))
	}
	return b.questions[index], nil
}

// GetByID returns the question with the given identifier.
func (b *QuestionBank) GetByID(id string) (domain.Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: %q", ErrQuestionNotFound, id)
	}
	return b.questions[i], nil
}

// TotalCount returns the number of questions in canonical order.
func (b *QuestionBank) TotalCount() int {
	return len(b.questions)
}
