package kasane

import "fmt"

// Word length limits: quiz words are 2 to 8 characters overall; each
// kind narrows the band further.
const (
	MinWordLength = 2
	MaxWordLength = 8
)

// InvalidWordLengthError is returned when a word's length falls
// outside the band the requested kind accepts. It is raised before any
// rendering work starts.
type InvalidWordLengthError struct {
	// Word is the offending word.
	Word string

	// Length is its character count.
	Length int

	// Min and Max bound the accepted band for the requested kind.
	Min, Max int
}

func (e *InvalidWordLengthError) Error() string {
	return fmt.Sprintf("kasane: word %q has %d characters, need %d-%d", e.Word, e.Length, e.Min, e.Max)
}

// validateWord checks the word against the kind's length band and
// returns its characters.
func validateWord(word string, kind Kind) ([]rune, error) {
	runes := []rune(word)
	min, max := kind.lengthBounds()
	if len(runes) < min || len(runes) > max {
		return nil, &InvalidWordLengthError{
			Word:   word,
			Length: len(runes),
			Min:    min,
			Max:    max,
		}
	}
	return runes, nil
}
