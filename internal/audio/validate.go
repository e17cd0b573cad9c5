package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateText checks that text has something a speech engine can say
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			return nil
		}
	}

	return fmt.Errorf("text must contain letters")
}
