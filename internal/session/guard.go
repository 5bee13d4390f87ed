package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxQuestionRunes bounds a single chat question.
const MaxQuestionRunes = 2000

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = fmt.Errorf("question exceeds %d characters", MaxQuestionRunes)
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|` +
		`new\s+instructions|ลืมคำสั่ง|ไม่ต้องสนใจคำสั่ง|เพิกเฉยต่อคำสั่ง)`,
)

// ValidateQuestion rejects blank and overlong questions.
func ValidateQuestion(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return ErrEmptyQuestion
	}
	if utf8.RuneCountInString(q) > MaxQuestionRunes {
		return ErrQuestionTooLong
	}
	return nil
}

// LooksLikeInjection reports whether q tries to override the assistant's
// instructions. Such questions are still answered; the system prompt keeps
// the model on the document.
func LooksLikeInjection(q string) bool {
	return injectionPattern.MatchString(q)
}
