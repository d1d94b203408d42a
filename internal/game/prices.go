package game

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	lorePriceRe = regexp.MustCompile(`(?:Price|Cost):\s*([0-9,\.]+)\s*([KMB])?\s*coins?`)
	signPriceRe = regexp.MustCompile(`(?:Instant-(?:Buy|Sell):\s*)?([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// ParsePriceFromLore scans item lore lines for a price, handling thousands
// separators and K/M/B suffixes. Lines may still carry formatting codes.
func ParsePriceFromLore(lore []string) (float64, bool) {
	for _, line := range lore {
		clean := StripFormatting(line)
		m := lorePriceRe.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "K":
			value *= 1_000
		case "M":
			value *= 1_000_000
		case "B":
			value *= 1_000_000_000
		}
		return value, true
	}
	return 0, false
}

// ParseSignPrice extracts the live price pre-filled on a bazaar sign. The
// first numeric line wins; unparseable signs report no price.
func ParseSignPrice(lines []string) (float64, bool) {
	for _, line := range lines {
		clean := strings.TrimSpace(StripFormatting(line))
		if clean == "" {
			continue
		}
		m := signPriceRe.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}
