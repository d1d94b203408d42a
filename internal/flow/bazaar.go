package flow

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"skyflipper/internal/game"
	"skyflipper/internal/match"
	"skyflipper/internal/model"
	"skyflipper/internal/utils"
)

// Price failsafe bounds. The sign editor opens pre-filled with the current
// top order price; an order priced far outside it means the market moved
// since the recommendation and the margin is gone.
const (
	buyFailsafeFactor  = 0.9
	sellFailsafeFactor = 1.1
)

var bazaarErrorPhrases = []string{
	"cannot place any more",
	"order limit",
	"insufficient",
	"not enough",
	"maximum orders",
	"buy order limit",
	"sell offer limit",
}

// RunBazaar places a single buy order or sell offer through the bazaar
// menus. Buy orders get a custom amount; both sides get a custom price with
// a failsafe against the pre-filled top order price.
func (c *Controller) RunBazaar(ctx context.Context, order model.BazaarOrder) error {
	// An item tag opens the product page directly, skipping search results.
	term := order.ItemTag
	if term == "" {
		term = utils.TitleCase(order.ItemName)
	}
	if err := c.transport.SendChat(ctx, "/bz "+term); err != nil {
		return wrapFailure(FailureUnexpectedMenuState, err)
	}

	w, err := c.AwaitWindow(ctx, c.delays.WindowTimeout, func(w game.WindowSnapshot) bool {
		return w.Kind == game.KindBazaarSearch || w.Kind == game.KindBazaarOrderOptions
	})
	if err != nil {
		return err
	}

	if w.Kind == game.KindBazaarSearch {
		w, err = c.selectSearchResult(ctx, w, order.ItemName)
		if err != nil {
			return err
		}
	}

	if err := scanBazaarErrors(w.Slots); err != nil {
		return err
	}

	w, err = c.selectOrderType(ctx, w, order.Side)
	if err != nil {
		return err
	}

	if order.Side == model.SideBuy {
		w, err = c.enterAmount(ctx, w, order.Amount)
		if err != nil {
			return err
		}
	}

	w, err = c.enterPrice(ctx, w, order)
	if err != nil {
		return err
	}

	if err := scanBazaarErrors(w.Slots); err != nil {
		return err
	}
	if err := c.click(ctx, w.ID, game.SlotBazaarConfirm); err != nil {
		return wrapFailure(FailureUnexpectedMenuState, err)
	}
	c.logger.Info("Placed bazaar order",
		slog.String("item", order.ItemName),
		slog.String("side", order.Side.String()),
		slog.Int("amount", order.Amount),
		slog.Float64("price", order.PricePerUnit),
	)
	return nil
}

func (c *Controller) selectSearchResult(ctx context.Context, w game.WindowSnapshot, itemName string) (game.WindowSnapshot, error) {
	res, ok := match.Match(itemName, w.Slots)
	if !ok {
		return game.WindowSnapshot{}, failf(FailureItemUnavailable, "%q not in search results", itemName)
	}
	if !res.Exact {
		c.logger.Debug("Using inexact search match",
			slog.String("wanted", itemName),
			slog.String("found", res.Name),
			slog.Int("slot", res.Slot),
		)
	}
	if err := c.click(ctx, w.ID, res.Slot); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	return c.awaitNextWindow(ctx, w.ID)
}

func (c *Controller) selectOrderType(ctx context.Context, w game.WindowSnapshot, side model.OrderSide) (game.WindowSnapshot, error) {
	wanted := "create buy order"
	if side == model.SideSell {
		wanted = "create sell offer"
	}
	slot, ok := findSlotByName(w.Slots, wanted)
	if !ok {
		return game.WindowSnapshot{}, failf(FailureUnexpectedMenuState, "no %q button in product window %q", wanted, w.Title)
	}
	if err := c.click(ctx, w.ID, slot); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	return c.awaitNextWindow(ctx, w.ID)
}

func (c *Controller) enterAmount(ctx context.Context, w game.WindowSnapshot, amount int) (game.WindowSnapshot, error) {
	slot, ok := findSlotByName(w.Slots, "custom amount")
	if !ok {
		return game.WindowSnapshot{}, failf(FailureUnexpectedMenuState, "no custom amount button in %q", w.Title)
	}
	if err := c.click(ctx, w.ID, slot); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	if _, err := c.AwaitSign(ctx, c.delays.WindowTimeout); err != nil {
		return game.WindowSnapshot{}, err
	}
	if err := c.transport.WriteSign(ctx, strconv.Itoa(amount)); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	return c.awaitNextWindow(ctx, w.ID)
}

func (c *Controller) enterPrice(ctx context.Context, w game.WindowSnapshot, order model.BazaarOrder) (game.WindowSnapshot, error) {
	slot, ok := findSlotByName(w.Slots, "custom price")
	if !ok {
		return game.WindowSnapshot{}, failf(FailureUnexpectedMenuState, "no custom price button in %q", w.Title)
	}
	if err := c.click(ctx, w.ID, slot); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	lines, err := c.AwaitSign(ctx, c.delays.WindowTimeout)
	if err != nil {
		return game.WindowSnapshot{}, err
	}

	if signPrice, ok := game.ParseSignPrice(lines); ok {
		if err := checkPriceFailsafe(order, signPrice); err != nil {
			return game.WindowSnapshot{}, err
		}
	}

	if err := c.transport.WriteSign(ctx, utils.FormatPrice(order.PricePerUnit)); err != nil {
		return game.WindowSnapshot{}, wrapFailure(FailureUnexpectedMenuState, err)
	}
	return c.awaitNextWindow(ctx, w.ID)
}

// checkPriceFailsafe rejects orders whose price has drifted too far from
// the live top of book. Buy orders priced well above it would fill into a
// crashed market; sell offers priced well below it give the margin away.
func checkPriceFailsafe(order model.BazaarOrder, signPrice float64) error {
	switch order.Side {
	case model.SideBuy:
		if signPrice < order.PricePerUnit*buyFailsafeFactor {
			return failf(FailurePriceFailsafe, "top order %.1f is below %.0f%% of buy price %.1f",
				signPrice, buyFailsafeFactor*100, order.PricePerUnit)
		}
	case model.SideSell:
		if signPrice > order.PricePerUnit*sellFailsafeFactor {
			return failf(FailurePriceFailsafe, "top order %.1f is above %.0f%% of sell price %.1f",
				signPrice, sellFailsafeFactor*100, order.PricePerUnit)
		}
	}
	return nil
}

func (c *Controller) awaitNextWindow(ctx context.Context, afterID int) (game.WindowSnapshot, error) {
	return c.AwaitWindow(ctx, c.delays.WindowTimeout, func(w game.WindowSnapshot) bool {
		return w.ID != afterID
	})
}

func findSlotByName(slots []game.SlotContent, wanted string) (int, bool) {
	for _, s := range slots {
		if s.Empty() {
			continue
		}
		name := match.Normalize(s.DisplayName)
		if strings.Contains(name, wanted) {
			return s.Index, true
		}
	}
	return 0, false
}

// scanBazaarErrors looks for red error text in slot names and lore. The
// bazaar reports order limits and purse problems this way instead of
// refusing to open the menu.
func scanBazaarErrors(slots []game.SlotContent) error {
	check := func(line string) error {
		if !strings.Contains(line, "§c") {
			return nil
		}
		clean := strings.ToLower(game.StripFormatting(line))
		for _, phrase := range bazaarErrorPhrases {
			if !strings.Contains(clean, phrase) {
				continue
			}
			kind := FailureOrderLimitReached
			if strings.Contains(clean, "insufficient") || strings.Contains(clean, "not enough") {
				kind = FailureInsufficientFunds
			}
			return failf(kind, "%s", strings.TrimSpace(game.StripFormatting(line)))
		}
		return nil
	}

	for _, s := range slots {
		if s.Empty() {
			continue
		}
		if err := check(s.DisplayName); err != nil {
			return err
		}
		for _, line := range s.Lore {
			if err := check(line); err != nil {
				return err
			}
		}
	}
	return nil
}
