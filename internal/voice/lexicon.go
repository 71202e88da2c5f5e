package voice

import (
	"fmt"
	"strings"
)

// Lexicon lists the trigger phrases for each intent. Phrases are matched as
// substrings of the normalized transcript and must themselves be lower case.
type Lexicon map[Intent][]string

// English phrases.
var English = Lexicon{
	Clear: {"clear", "erase everything"},
	Solve: {"solve equation", "solve the equation"},
	Draw:  {"draw graph", "draw the graph", "plot graph", "plot the graph"},
}

// Swedish phrases.
var Swedish = Lexicon{
	Clear: {"rensa"},
	Solve: {"lös ekvationen"},
	Draw:  {"rita grafen"},
}

// Merge returns a lexicon holding the phrases of all given lexicons.
func Merge(lexicons ...Lexicon) Lexicon {
	merged := Lexicon{}
	for _, lex := range lexicons {
		for intent, phrases := range lex {
			merged[intent] = append(merged[intent], phrases...)
		}
	}
	return merged
}

// ForLanguage returns the lexicon for "en", "sv" or "all".
func ForLanguage(lang string) (Lexicon, error) {
	switch strings.ToLower(lang) {
	case "en", "en-us", "english":
		return English, nil
	case "sv", "sv-se", "swedish":
		return Swedish, nil
	case "", "all":
		return Merge(English, Swedish), nil
	default:
		return nil, fmt.Errorf("unsupported voice language %q", lang)
	}
}
