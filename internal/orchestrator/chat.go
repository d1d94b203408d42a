package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"skyflipper/internal/game"
)

var soldLineRe = regexp.MustCompile(`\[Auction\]\s+(\S+)\s+bought\s+(.+?)\s+for\s+([\d,]+)\s+coins`)

// startupMarkers appear in server chat once the player has fully joined the
// island. Any of them ends the startup phase.
var startupMarkers = []string{
	"welcome to hypixel skyblock",
	"you are playing on profile",
	"profile id:",
	"latest update:",
}

// parseSoldLine extracts buyer, item and price from an auction sale line.
func parseSoldLine(raw string) (buyer, item string, price float64, ok bool) {
	text := game.StripFormatting(raw)
	m := soldLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", ""), 64)
	if err != nil {
		return "", "", 0, false
	}
	return m[1], strings.TrimSpace(m[2]), n, true
}

func isStartupLine(raw string) bool {
	text := strings.ToLower(game.StripFormatting(raw))
	for _, marker := range startupMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
