package usecase

import (
	"github.com/x-xyz/catalog/domain/catalog"
)

// Select returns the entries shown under tab. Unknown tabs show everything, like newest.
func Select(collectibles []*catalog.Collectible, tab catalog.Tab) []*catalog.Collectible {
	var keep func(*catalog.Collectible) bool
	switch tab {
	case catalog.TabOnSale:
		keep = (*catalog.Collectible).IsOnSale
	case catalog.TabMintables:
		keep = (*catalog.Collectible).IsMintable
	default:
		return collectibles
	}
	selected := make([]*catalog.Collectible, 0, len(collectibles))
	for _, col := range collectibles {
		if keep(col) {
			selected = append(selected, col)
		}
	}
	return selected
}
