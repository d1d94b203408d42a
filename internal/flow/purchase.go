package flow

import (
	"context"
	"log/slog"
	"time"

	"skyflipper/internal/game"
	"skyflipper/internal/model"
)

// PurchaseOutcome describes how a purchase attempt ended.
type PurchaseOutcome struct {
	// Claimed means the auction view showed an already won auction and it
	// was claimed instead of bought.
	Claimed bool
	// Skipped means the confirm button was pre-clicked on the predicted
	// next window before the confirm menu opened.
	Skipped bool
	// Elapsed is the time from the auction view opening to the confirm
	// clicks going out.
	Elapsed time.Duration
}

// RunPurchase buys a single BIN auction. preClick enables the confirm
// pre-click optimization, which fires the confirm click at the predicted
// next window id in the same tick as the purchase click.
func (c *Controller) RunPurchase(ctx context.Context, flip model.AuctionFlip, preClick bool) (PurchaseOutcome, error) {
	if err := c.transport.SendChat(ctx, "/viewauction "+flip.AuctionID); err != nil {
		return PurchaseOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
	}

	w, err := c.AwaitWindow(ctx, c.delays.WindowTimeout, func(w game.WindowSnapshot) bool {
		return w.Kind == game.KindBinAuctionView || w.Kind == game.KindAuctionView
	})
	if err != nil {
		return PurchaseOutcome{}, err
	}
	started := time.Now()

	slot, _ := w.Slot(game.SlotPurchase)
	marker := game.ClassifyPurchaseSlot(slot)
	c.logger.Debug("Auction view opened",
		slog.String("item", flip.ItemName),
		slog.Int("window", w.ID),
		slog.String("marker", marker.String()),
	)

	switch marker {
	case game.MarkerObstruction:
		changed, err := c.AwaitSlotChange(ctx, c.delays.WindowTimeout, w.ID, game.SlotPurchase, slot)
		if err != nil {
			return PurchaseOutcome{}, err
		}
		slot = changed
		marker = game.ClassifyPurchaseSlot(slot)
	case game.MarkerDecoy:
		survived, err := c.outlastDecoy(ctx, w.ID)
		if err != nil {
			return PurchaseOutcome{}, err
		}
		slot = survived
		marker = game.ClassifyPurchaseSlot(slot)
	}

	switch marker {
	case game.MarkerBuyNow:
		if err := c.click(ctx, w.ID, game.SlotPurchase); err != nil {
			return PurchaseOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
		}
		skipped := false
		if preClick {
			// The confirm menu always opens with the next sequential
			// window id, so the confirm click can be sent before the
			// menu exists.
			if err := c.click(ctx, w.ID+1, game.SlotConfirm); err != nil {
				return PurchaseOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
			}
			skipped = true
		}
		if err := c.confirmPurchase(ctx, skipped); err != nil {
			return PurchaseOutcome{}, err
		}
		return PurchaseOutcome{Skipped: skipped, Elapsed: time.Since(started)}, nil

	case game.MarkerClaimable:
		if err := c.click(ctx, w.ID, game.SlotPurchase); err != nil {
			return PurchaseOutcome{}, wrapFailure(FailureUnexpectedMenuState, err)
		}
		return PurchaseOutcome{Claimed: true, Elapsed: time.Since(started)}, nil

	case game.MarkerSoldOut:
		return PurchaseOutcome{}, failf(FailureItemUnavailable, "%s already sold", flip.ItemName)

	case game.MarkerInsufficientFunds:
		return PurchaseOutcome{}, failf(FailureInsufficientFunds, "not enough coins for %s", flip.ItemName)

	default:
		return PurchaseOutcome{}, failf(FailureUnexpectedMenuState, "unexpected item %q in purchase slot", slot.ItemID)
	}
}

// outlastDecoy waits out a bed decoy by polling the purchase slot until the
// real buy button replaces it. Gives up after a handful of polls that still
// show the decoy.
func (c *Controller) outlastDecoy(ctx context.Context, windowID int) (game.SlotContent, error) {
	failed := 0
	for {
		select {
		case <-ctx.Done():
			return game.SlotContent{}, ctx.Err()
		default:
		}

		w, open := c.Window(windowID)
		if !open {
			return game.SlotContent{}, failf(FailureUnexpectedMenuState, "auction view closed during decoy wait")
		}
		slot, _ := w.Slot(game.SlotPurchase)
		switch game.ClassifyPurchaseSlot(slot) {
		case game.MarkerBuyNow:
			return slot, nil
		case game.MarkerDecoy:
			failed++
		default:
			return slot, nil
		}
		if failed >= c.delays.BedSpamMax {
			return game.SlotContent{}, failf(FailureItemUnavailable, "decoy never cleared after %d checks", failed)
		}
		c.sleep(c.delays.BedSpamDelay)
	}
}

// confirmPurchase drives the confirm menu. When the confirm click was
// pre-sent the menu may never open at all, which counts as success.
func (c *Controller) confirmPurchase(ctx context.Context, preClicked bool) error {
	w, err := c.AwaitWindowKind(ctx, c.delays.WindowTimeout, game.KindConfirmPurchase)
	if err != nil {
		if preClicked && FailureOf(err) == FailureTimeout {
			return nil
		}
		return err
	}

	if !preClicked {
		if err := c.click(ctx, w.ID, game.SlotConfirm); err != nil {
			return wrapFailure(FailureUnexpectedMenuState, err)
		}
	}
	c.sleep(c.delays.ConfirmDelay)

	// Extra clicks in case the first packet was dropped. They stop as soon
	// as the menu goes away.
	for i := 0; i < c.delays.SafetyClicks; i++ {
		if _, open := c.Window(w.ID); !open {
			break
		}
		if err := c.click(ctx, w.ID, game.SlotConfirm); err != nil {
			return wrapFailure(FailureUnexpectedMenuState, err)
		}
		c.sleep(c.delays.SafetyInterval)
	}
	return nil
}
