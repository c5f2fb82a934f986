package output

import "strings"

// illegalChars are removed from titles before they are used as file names.
const illegalChars = `\/*?:"<>|`

// SanitizeFilename deletes the characters \ / * ? : " < > | from title.
// Nothing else is changed, so the result may still be empty.
func SanitizeFilename(title string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalChars, r) {
			return -1
		}
		return r
	}, title)
}
