package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSoldLine(t *testing.T) {
	buyer, item, price, ok := parseSoldLine("§6[Auction] §aRich_Dude §ebought §6Hyperion §efor §61,050,000 coins")
	assert.True(t, ok)
	assert.Equal(t, "Rich_Dude", buyer)
	assert.Equal(t, "Hyperion", item)
	assert.Equal(t, 1_050_000.0, price)
}

func TestParseSoldLineIgnoresOtherChat(t *testing.T) {
	_, _, _, ok := parseSoldLine("You purchased Hyperion for 800,000,000 coins!")
	assert.False(t, ok)
}

func TestIsStartupLine(t *testing.T) {
	assert.True(t, isStartupLine("§eWelcome to Hypixel SkyBlock§r!"))
	assert.True(t, isStartupLine("You are playing on profile: Mango"))
	assert.True(t, isStartupLine("Profile ID: 1234-abcd"))
	assert.False(t, isStartupLine("Rich_Dude joined the lobby!"))
}
