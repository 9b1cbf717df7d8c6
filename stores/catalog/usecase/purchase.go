package usecase

import (
	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/domain/catalog"
)

// FilterPurchased drops every listing whose id was purchased. Mint-only entries have no listing and always stay.
func FilterPurchased(c bCtx.Ctx, candidates []*catalog.Collectible, purchases []*catalog.PurchaseEvent) []*catalog.Collectible {
	purchased := make(map[uint64]struct{}, len(purchases))
	for idx, p := range purchases {
		if p == nil {
			c.WithField("index", idx).Warn("nil purchase event skipped")
			continue
		}
		itemId, err := catalog.ToUint64(p.ItemId)
		if err != nil {
			c.WithFields(log.Fields{
				"index":  idx,
				"itemId": p.ItemId,
				"err":    err,
			}).Warn("purchase cannot match any listing")
			continue
		}
		purchased[itemId] = struct{}{}
	}

	visible := make([]*catalog.Collectible, 0, len(candidates))
	for _, col := range candidates {
		if col == nil {
			continue
		}
		if col.ListingId != nil {
			if _, ok := purchased[*col.ListingId]; ok {
				continue
			}
		}
		visible = append(visible, col)
	}
	return visible
}
