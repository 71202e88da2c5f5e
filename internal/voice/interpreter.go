package voice

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Interpreter classifies transcripts against a lexicon.
//
// The zero value is not usable; use New.
type Interpreter struct {
	lexicon Lexicon

	// fuzzy is the minimum Levenshtein similarity for the fallback pass.
	// Zero disables it.
	fuzzy float64
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLexicon replaces the default English+Swedish lexicon.
func WithLexicon(lex Lexicon) Option {
	return func(in *Interpreter) { in.lexicon = lex }
}

// WithFuzzyThreshold enables a second, approximate pass for transcripts that
// contain no exact phrase, e.g. "solve equasion". threshold is a similarity
// in (0, 1]; values outside that range disable the pass.
func WithFuzzyThreshold(threshold float64) Option {
	return func(in *Interpreter) {
		if threshold > 0 && threshold <= 1 {
			in.fuzzy = threshold
		} else {
			in.fuzzy = 0
		}
	}
}

// New creates an Interpreter.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{lexicon: Merge(English, Swedish)}
	for _, opt := range opts {
		opt(in)
	}

	normalized := make(Lexicon, len(in.lexicon))
	for intent, phrases := range in.lexicon {
		for _, p := range phrases {
			if p = Normalize(p); p != "" {
				normalized[intent] = append(normalized[intent], p)
			}
		}
	}
	in.lexicon = normalized
	return in
}

var defaultInterpreter = New()

// Classify classifies a transcript with the default English+Swedish lexicon.
func Classify(transcript string) Intent {
	return defaultInterpreter.Classify(transcript)
}

// Classify returns the intent of transcript. Intents are tested in the order
// Clear, Solve, Draw and the first one with a phrase contained in the
// transcript wins.
func (in *Interpreter) Classify(transcript string) Intent {
	text := Normalize(transcript)
	if text == "" {
		return Unrecognized
	}

	for _, intent := range priority {
		for _, phrase := range in.lexicon[intent] {
			if strings.Contains(text, phrase) {
				return intent
			}
		}
	}

	if in.fuzzy > 0 {
		return in.classifyFuzzy(text)
	}
	return Unrecognized
}

// classifyFuzzy compares every word window of phrase length against each
// phrase, keeping the same intent priority as the exact pass.
func (in *Interpreter) classifyFuzzy(text string) Intent {
	words := strings.Fields(text)
	lev := metrics.NewLevenshtein()

	for _, intent := range priority {
		for _, phrase := range in.lexicon[intent] {
			n := len(strings.Fields(phrase))
			for i := 0; i+n <= len(words); i++ {
				window := strings.Join(words[i:i+n], " ")
				if strutil.Similarity(window, phrase, lev) >= in.fuzzy {
					return intent
				}
			}
		}
	}
	return Unrecognized
}

// Normalize prepares a transcript for matching: Unicode NFC composition,
// language-neutral lower casing and collapsed whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}
