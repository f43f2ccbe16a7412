package matching

import (
	"fmt"
)

// ComposeMatchNotice builds the notification text for one pairing.
// Pure function; delivery belongs to the Messenger.
//
// Shared-author grammar: none → generic phrasing, one → name it,
// two → name both, three or more → name the first two and count the
// rest.
func ComposeMatchNotice(partnerName string, sharedAuthors []string) string {
	base := fmt.Sprintf("You've been matched with %s this cycle!", partnerName)

	switch len(sharedAuthors) {
	case 0:
		return base + " You two have remarkably similar taste. Say hi and compare notes."
	case 1:
		return fmt.Sprintf("%s You both love %s.", base, sharedAuthors[0])
	case 2:
		return fmt.Sprintf("%s You both love %s and %s.", base, sharedAuthors[0], sharedAuthors[1])
	default:
		rest := len(sharedAuthors) - 2
		word := "others"
		if rest == 1 {
			word = "other"
		}
		return fmt.Sprintf("%s You both love %s, %s and %d %s.",
			base, sharedAuthors[0], sharedAuthors[1], rest, word)
	}
}
