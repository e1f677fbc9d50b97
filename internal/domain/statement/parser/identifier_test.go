package parser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierExtractor_Extract(t *testing.T) {
	extractor := NewIdentifierExtractor(0,
		IdentifierPattern{Pattern: regexp.MustCompile(`\b(40\d{18})\b`)},
		IdentifierPattern{
			Pattern: regexp.MustCompile(`(?i)Номер\s+сч[её]та\s*[:№]?\s*([0-9 \-]{10,})`),
			Format:  AccountDigits,
		},
		IdentifierPattern{Pattern: regexp.MustCompile(`\*{1,2}\s*(\d{4})`), Format: MaskedCard},
	)

	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{
			name:  "plain account number",
			pages: []string{"Выписка по счёту 40817810099910004312 за период"},
			want:  "40817810099910004312",
		},
		{
			name:  "spaced account number with NBSP",
			pages: []string{"Номер счёта: 40817 810 0 9991 0004312\nПериод"},
			want:  "40817810099910004312",
		},
		{
			name:  "labeled value with wrong length falls through",
			pages: []string{"Номер счета: 1234 5678 90\nКарта **5521"},
			want:  "*5521",
		},
		{
			name:  "later page",
			pages: []string{"Титульная страница", "", "Карта * 7788"},
			want:  "*7788",
		},
		{
			name:  "beyond the page limit",
			pages: []string{"a", "b", "c", "40817810099910004312"},
			want:  "",
		},
		{
			name:  "no pages",
			pages: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Extract(tt.pages))
		})
	}
}

func TestIdentifierExtractor_PageOrderBeatsPatternOrder(t *testing.T) {
	extractor := NewIdentifierExtractor(2,
		IdentifierPattern{Pattern: regexp.MustCompile(`\b(40\d{18})\b`)},
		IdentifierPattern{Pattern: regexp.MustCompile(`\*{1,2}\s*(\d{4})`), Format: MaskedCard},
	)

	got := extractor.Extract([]string{"Карта **1234", "40817810099910004312"})
	assert.Equal(t, "*1234", got)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "40817810099910004312", Digits([]string{"", "40817 810-0 9991 0004312"}))
	assert.Equal(t, "123", Digits([]string{"a1b2c3"}))
	assert.Equal(t, "", AccountDigits([]string{"", "4081781009"}))
	assert.Equal(t, "*4312", MaskedCard([]string{"", "5536 91** **** 4312"}))
	assert.Equal(t, "", MaskedCard([]string{"", "12"}))
}
