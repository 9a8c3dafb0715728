package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
)

// DefaultVocabulary returns the built-in behaviour phrases.
func DefaultVocabulary() models.Vocabulary {
	return models.Vocabulary{
		Positive: []string{"مشاركة فعالة", "حل الواجب", "احترام المعلم", "نظافة", "تعاون", "إجابة ذكية"},
		Negative: []string{"إزعاج", "نسيان الكتاب", "تأخر", "نوم في الحصة", "استخدام الهاتف", "شغب"},
	}
}

// LoadVocabulary reads phrases from a YAML file with positive and negative
// lists. An empty path yields the defaults, and a list missing from the file
// keeps its default.
func LoadVocabulary(path string) (models.Vocabulary, error) {
	vocab := DefaultVocabulary()
	if strings.TrimSpace(path) == "" {
		return vocab, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return vocab, fmt.Errorf("read vocabulary: %w", err)
	}
	var parsed models.Vocabulary
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return vocab, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if phrases := trimPhrases(parsed.Positive); len(phrases) > 0 {
		vocab.Positive = phrases
	}
	if phrases := trimPhrases(parsed.Negative); len(phrases) > 0 {
		vocab.Negative = phrases
	}
	return vocab, nil
}

func trimPhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, phrase := range in {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			out = append(out, phrase)
		}
	}
	return out
}
