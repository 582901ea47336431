package match

import "fmt"

// Summary is the one-line calendar title for a pre-sale
func Summary(home, away string) string {
	return fmt.Sprintf("VVK: %s - %s", home, away)
}

// Describe builds the event description. The wording is German because feed
// subscribers read it as-is.
func Describe(opponent string, isHome bool, kickoff DateExpr) string {
	prefix := "Auswärtsspiel gegen"
	if isHome {
		prefix = "Heimspiel gegen"
	}

	if kickoff.Kind == Range {
		return fmt.Sprintf("%s %s im Zeitraum: %s", prefix, opponent, kickoff.Raw)
	}
	return fmt.Sprintf("%s %s am %s um %s", prefix, opponent, kickoff.DateString(), kickoff.TimeString())
}
