package service

import (
	"errors"
	"fmt"

	"personabot/internal/catalog"
	"personabot/internal/domain"
)

var ErrInvalidAnswer = errors.New("answer inconsistent with question bank")

// Score sums option weights per dimension and derives the four-letter
// classification. Questions absent from answers contribute zero; whether
// the set is complete is the session's concern, not scoring's.
//
// Pole rule: a strictly positive sum picks the dimension's first pole, a
// strictly negative sum the second. A sum of exactly zero resolves to the
// first pole, so the rule collapses to a single >= 0 comparison and is
// total for any input.
func Score(answers map[string]domain.Answer, bank *catalog.QuestionBank) (domain.DimensionScores, domain.Classification, error) {
	scores := domain.DimensionScores{
		domain.DimensionEI: 0,
		domain.DimensionSN: 0,
		domain.DimensionTF: 0,
		domain.DimensionJP: 0,
	}

	for questionID, answer := range answers {
		question, err := bank.GetByID(questionID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: question %q not in bank", ErrInvalidAnswer, questionID)
		}
		if answer.OptionIndex < 0 || answer.OptionIndex >= len(question.Options) {
			return nil, "", fmt.Errorf("%w: question %q option index %d out of range",
				ErrInvalidAnswer, questionID, answer.OptionIndex)
		}
		scores[question.Dimension] += question.Options[answer.OptionIndex].Weight
	}

	code := make([]byte, 0, 4)
	for _, dim := range domain.Dimensions {
		positive, negative := dim.Poles()
		if scores[dim] >= 0 {
			code = append(code, positive...)
		} else {
			code = append(code, negative...)
		}
	}

	return scores, domain.Classification(code), nil
}
