package catalog

import (
	"encoding/json"
)

type Currency string

const (
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
)

// CurrencyFromCode maps the listing currency discriminant, 0 is ETH and anything else USDC
func CurrencyFromCode(code uint8) Currency {
	if code == 0 {
		return CurrencyETH
	}
	return CurrencyUSDC
}

type Attribute struct {
	TraitType string      `json:"trait_type,omitempty"`
	Value     interface{} `json:"value"`
}

// Collectible is one entry of the rendered catalog. Uri is its identity.
type Collectible struct {
	ListingId       *uint64
	Uri             string
	Owner           string
	Price           *string
	PayableCurrency *Currency
	IsAuction       *bool
	Date            *string
	HighestBidder   *string
	MaxTokenId      *uint64
	Metadata        *Metadata
}

// keys a metadata record may override
const (
	keyListingId       = "listingId"
	keyUri             = "uri"
	keyOwner           = "owner"
	keyPrice           = "price"
	keyPayableCurrency = "payableCurrency"
	keyIsAuction       = "isAuction"
	keyDate            = "date"
	keyHighestBidder   = "highestBidder"
	keyMaxTokenId      = "maxTokenId"
)

func isEventKey(k string) bool {
	switch k {
	case keyListingId, keyUri, keyOwner, keyPrice, keyPayableCurrency,
		keyIsAuction, keyDate, keyHighestBidder, keyMaxTokenId:
		return true
	}
	return false
}

// ApplyMetadata attaches md and lets its keys override same-named event fields.
// It returns the overriding keys whose value could not be used.
func (c *Collectible) ApplyMetadata(md *Metadata) []string {
	c.Metadata = md
	if md == nil {
		return nil
	}
	ignored := []string{}
	for _, k := range md.Keys() {
		if !isEventKey(k) {
			continue
		}
		if err := c.override(k, md.Raw(k)); err != nil {
			ignored = append(ignored, k)
		}
	}
	return ignored
}

func (c *Collectible) override(key string, raw json.RawMessage) error {
	isNull := string(raw) == "null"
	switch key {
	case keyUri:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return ErrInvalidMetadata
		}
		c.Uri = s
		return nil
	case keyOwner:
		return json.Unmarshal(raw, &c.Owner)
	case keyListingId:
		return overrideUint64(&c.ListingId, raw, isNull)
	case keyMaxTokenId:
		return overrideUint64(&c.MaxTokenId, raw, isNull)
	case keyPrice:
		return overrideString(&c.Price, raw, isNull)
	case keyDate:
		return overrideString(&c.Date, raw, isNull)
	case keyHighestBidder:
		return overrideString(&c.HighestBidder, raw, isNull)
	case keyIsAuction:
		if isNull {
			c.IsAuction = nil
			return nil
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		c.IsAuction = &b
		return nil
	case keyPayableCurrency:
		if isNull {
			c.PayableCurrency = nil
			return nil
		}
		var cur Currency
		if err := json.Unmarshal(raw, &cur); err != nil {
			return err
		}
		if cur != CurrencyETH && cur != CurrencyUSDC {
			return ErrInvalidMetadata
		}
		c.PayableCurrency = &cur
		return nil
	}
	return nil
}

func overrideUint64(dst **uint64, raw json.RawMessage, isNull bool) error {
	if isNull {
		*dst = nil
		return nil
	}
	var v uint64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func overrideString(dst **string, raw json.RawMessage, isNull bool) error {
	if isNull {
		*dst = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

// IsOnSale reports a live listing with a price
func (c *Collectible) IsOnSale() bool {
	return c.ListingId != nil && *c.ListingId != 0 && c.Price != nil && *c.Price != ""
}

// IsMintable reports a collection open for minting
func (c *Collectible) IsMintable() bool {
	return c.MaxTokenId != nil && *c.MaxTokenId != 0
}

// MarshalJSON flattens the metadata keys next to the event fields
func (c *Collectible) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	if c.Metadata != nil {
		for _, k := range c.Metadata.Keys() {
			if !isEventKey(k) {
				out[k] = c.Metadata.Raw(k)
			}
		}
	}
	out[keyUri] = c.Uri
	out[keyOwner] = c.Owner
	if c.ListingId != nil {
		out[keyListingId] = *c.ListingId
	}
	if c.Price != nil {
		out[keyPrice] = *c.Price
	}
	if c.PayableCurrency != nil {
		out[keyPayableCurrency] = *c.PayableCurrency
	}
	if c.IsAuction != nil {
		out[keyIsAuction] = *c.IsAuction
	}
	if c.Date != nil {
		out[keyDate] = *c.Date
	}
	if c.HighestBidder != nil {
		out[keyHighestBidder] = *c.HighestBidder
	}
	if c.MaxTokenId != nil {
		out[keyMaxTokenId] = *c.MaxTokenId
	}
	return json.Marshal(out)
}
