package downloads

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// seasonPattern matches localized season markers like "Stagione 2",
// "stagione-12" or "Stagione: 3".
var seasonPattern = regexp.MustCompile(`(?i)\bStagione[\s\-_:]*([0-9]+)\b`)

// CleanName standardizes a package name before submission, rewriting
// localized season markers to the SNN convention ("Stagione 2" -> "S02").
func CleanName(name string) string {
	return seasonPattern.ReplaceAllStringFunc(name, func(match string) string {
		sub := seasonPattern.FindStringSubmatch(match)
		num, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		return fmt.Sprintf("S%02d", num)
	})
}

// trimmedName is CleanName plus whitespace normalization.
func trimmedName(name string) string {
	return strings.TrimSpace(CleanName(name))
}
