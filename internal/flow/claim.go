package flow

import (
	"context"
	"log/slog"
	"strings"

	"skyflipper/internal/game"
	"skyflipper/internal/match"
)

// ClaimOutcome reports what a claim sweep collected.
type ClaimOutcome struct {
	Claimed []string
	// UsedClaimAll is set when a single Claim All button covered
	// everything.
	UsedClaimAll bool
}

// RunClaimPurchased collects won auctions from the bids menu.
func (c *Controller) RunClaimPurchased(ctx context.Context) (ClaimOutcome, error) {
	return c.runClaim(ctx, "your bids", game.KindBids)
}

// RunClaimSold collects coins from ended auctions in the manage menu.
func (c *Controller) RunClaimSold(ctx context.Context) (ClaimOutcome, error) {
	return c.runClaim(ctx, "manage auctions", game.KindManageAuctions)
}

func (c *Controller) runClaim(ctx context.Context, menuButton string, kind game.WindowKind) (ClaimOutcome, error) {
	if err := c.transport.SendChat(ctx, "/ah"); err != nil {
		return ClaimOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	hub, err := c.AwaitWindowKind(ctx, c.delays.WindowTimeout, game.KindAuctionHouse)
	if err != nil {
		return ClaimOutcome{}, err
	}

	slot, ok := findSlotByName(hub.Slots, menuButton)
	if !ok {
		return ClaimOutcome{}, failf(FailureUnexpectedMenuState, "no %q button in auction house menu", menuButton)
	}
	if err := c.click(ctx, hub.ID, slot); err != nil {
		return ClaimOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	w, err := c.AwaitWindowKind(ctx, c.delays.WindowTimeout, kind)
	if err != nil {
		return ClaimOutcome{}, err
	}

	if slot, ok := findSlotByName(w.Slots, "claim all"); ok {
		if err := c.click(ctx, w.ID, slot); err != nil {
			return ClaimOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
		}
		c.logger.Info("Claimed everything at once", slog.String("menu", menuButton))
		defer c.CloseAll(ctx)
		return ClaimOutcome{UsedClaimAll: true}, nil
	}

	// Claiming reopens the listing menu, so each pass rescans the refreshed
	// snapshot from the top. Entries that only become claimable after an
	// earlier claim are picked up by the rescan. The pass count is bounded
	// by the menu size in case a claim click silently fails.
	outcome := ClaimOutcome{}
	for len(outcome.Claimed) < len(w.Slots) {
		entry, found := firstClaimable(w.Slots)
		if !found {
			break
		}
		if err := c.click(ctx, w.ID, entry.Index); err != nil {
			return outcome, wrapFailure(FailureUnexpectedMenuState, err)
		}
		outcome.Claimed = append(outcome.Claimed, match.Normalize(entry.DisplayName))
		c.sleep(c.delays.ConfirmDelay)

		w, err = c.AwaitWindowKind(ctx, c.delays.WindowTimeout, kind)
		if err != nil {
			break
		}
	}
	c.CloseAll(ctx)
	if len(outcome.Claimed) == 0 && err != nil {
		return outcome, err
	}
	return outcome, nil
}

func firstClaimable(slots []game.SlotContent) (game.SlotContent, bool) {
	for _, s := range slots {
		if claimableEntry(s) {
			return s, true
		}
	}
	return game.SlotContent{}, false
}

// claimableEntry recognizes a listing that has ended and waits for pickup.
func claimableEntry(s game.SlotContent) bool {
	if s.Empty() {
		return false
	}
	if s.ItemID == "gold_block" {
		return true
	}
	for _, line := range s.Lore {
		clean := strings.ToLower(game.StripFormatting(line))
		if strings.Contains(clean, "click to claim") || strings.Contains(clean, "status: sold") {
			return true
		}
	}
	return false
}
