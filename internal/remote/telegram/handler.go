package telegram

import (
	"context"
	"fmt"
	"time"

	"skyflipper/internal/event"
	"skyflipper/internal/utils"
)

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	var text string

	switch evt := e.(type) {
	case event.StartupCompleteEvent:
		text = fmt.Sprintf("%s is ready (startup took %s)", b.player, evt.Elapsed.Round(10*time.Millisecond))
	case event.FlipPurchasedEvent:
		text = fmt.Sprintf("Bought %s for %s, target %s (+%s)",
			evt.Flip.ItemName,
			utils.CompactNumber(float64(evt.Flip.StartingBid)),
			utils.CompactNumber(float64(evt.Flip.Target)),
			utils.CompactNumber(float64(evt.Flip.Profit())),
		)
	case event.FlipFailedEvent:
		text = fmt.Sprintf("Failed to buy %s: %s", evt.Flip.ItemName, evt.Reason)
	case event.ItemSoldEvent:
		text = fmt.Sprintf("Sold %s for %s to %s", evt.ItemName, utils.CompactNumber(evt.Price), evt.Buyer)
	case event.BazaarOrderPlacedEvent:
		text = fmt.Sprintf("Placed %s for %dx %s at %s each",
			evt.Order.Side, evt.Order.Amount, evt.Order.ItemName,
			utils.CompactNumber(evt.Order.PricePerUnit),
		)
	case event.BazaarOrderFailedEvent:
		text = fmt.Sprintf("Bazaar %s for %s failed: %s", evt.Order.Side, evt.Order.ItemName, evt.Reason)
	case event.BotDisconnectedEvent:
		text = fmt.Sprintf("%s disconnected: %s", b.player, evt.Reason)
	default:
		return nil
	}

	b.send(text)
	return nil
}
