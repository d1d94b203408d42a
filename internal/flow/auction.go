package flow

import (
	"context"
	"time"

	"skyflipper/internal/game"
	"skyflipper/internal/match"
	"skyflipper/internal/utils"
)

// RunCreateAuction lists an inventory item as a BIN auction. The menu chain is
// auction house root, create menu, item pick, price sign, confirm.
func (c *Controller) RunCreateAuction(ctx context.Context, itemName string, price float64, duration time.Duration) error {
	if err := c.transport.SendChat(ctx, "/ah"); err != nil {
		return err
	}
	root, err := c.AwaitWindowKind(ctx, c.delays.WindowTimeout, game.KindAuctionHouse)
	if err != nil {
		return err
	}

	createSlot, ok := findSlotByName(root.Slots, "create auction")
	if !ok {
		return failf(FailureUnexpectedMenuState, "no create auction button in %q", root.Title)
	}
	if err := c.click(ctx, root.ID, createSlot); err != nil {
		return err
	}
	createMenu, err := c.awaitNextWindow(ctx, root.ID)
	if err != nil {
		return err
	}

	res, ok := match.Match(itemName, createMenu.InventorySection())
	if !ok {
		return failf(FailureItemUnavailable, "item %q not in inventory", itemName)
	}
	if err := c.click(ctx, createMenu.ID, res.Slot); err != nil {
		return err
	}
	c.sleep(c.delays.ConfirmDelay)

	picked, ok := c.Window(createMenu.ID)
	if !ok {
		var err error
		if picked, err = c.awaitNextWindow(ctx, createMenu.ID); err != nil {
			return err
		}
	}

	binSlot, ok := findSlotByName(picked.Slots, "bin auction")
	if !ok {
		binSlot, ok = findSlotByName(picked.Slots, "auction for")
	}
	if !ok {
		return failf(FailureUnexpectedMenuState, "no price button in %q", picked.Title)
	}
	if err := c.click(ctx, picked.ID, binSlot); err != nil {
		return err
	}
	if _, err := c.AwaitSign(ctx, c.delays.WindowTimeout); err != nil {
		return err
	}
	if err := c.transport.WriteSign(ctx, utils.FormatPrice(price)); err != nil {
		return err
	}

	confirmMenu, err := c.awaitNextWindow(ctx, picked.ID)
	if err != nil {
		return err
	}
	confirmSlot, ok := findSlotByName(confirmMenu.Slots, "create auction")
	if !ok {
		confirmSlot, ok = findSlotByName(confirmMenu.Slots, "confirm")
	}
	if !ok {
		return failf(FailureUnexpectedMenuState, "no confirm button in %q", confirmMenu.Title)
	}
	return c.click(ctx, confirmMenu.ID, confirmSlot)
}
