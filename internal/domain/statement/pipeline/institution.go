// Package pipeline wires the normalizers, header mapper and parsers into one
// extraction pipeline per supported institution. Every pipeline holds only
// immutable configuration and may be shared between goroutines.
package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
)

// ErrUnsupportedInstitution is returned for an unknown institution code.
var ErrUnsupportedInstitution = errors.New("unsupported institution")

// Institution identifies the bank that issued a statement.
type Institution string

const (
	Sber         Institution = "sber"
	TBank        Institution = "tbank"
	TBankDeposit Institution = "tbank_deposit"
	Ozon         Institution = "ozon"
)

// Institutions lists every supported institution.
var Institutions = []Institution{Sber, TBank, TBankDeposit, Ozon}

// InstitutionPipeline turns one statement document into transactions.
type InstitutionPipeline interface {
	Institution() Institution
	// Parse fails only with an error wrapping statement.ErrParseFailed, when
	// the document cannot be opened or decoded at all.
	Parse(data []byte) (*statement.Result, error)
}

// ParseInstitution resolves a bank code, ignoring case and surrounding space.
func ParseInstitution(code string) (Institution, error) {
	inst := Institution(strings.ToLower(strings.TrimSpace(code)))
	if slices.Contains(Institutions, inst) {
		return inst, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedInstitution, code)
}

const maxSuggestDistance = 3

// Suggest returns the supported code closest to a mistyped one, or "" when
// nothing is close enough.
func Suggest(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}

	best, bestDistance := "", maxSuggestDistance+1
	for _, inst := range Institutions {
		candidate := string(inst)
		if fuzzy.MatchFold(code, candidate) {
			return candidate
		}
		if d := fuzzy.LevenshteinDistance(code, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// New returns the pipeline for inst reading documents through extractor.
func New(inst Institution, extractor document.Extractor) (InstitutionPipeline, error) {
	switch inst {
	case Sber:
		return NewSber(extractor), nil
	case TBank:
		return NewTBank(extractor), nil
	case TBankDeposit:
		return NewTBankDeposit(extractor), nil
	case Ozon:
		return NewOzon(extractor), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedInstitution, inst)
}
