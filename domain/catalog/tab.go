package catalog

type Tab string

const (
	TabNewest    Tab = "newest"
	TabOnSale    Tab = "on-sale"
	TabMintables Tab = "mintables"
)

// ParseTab accepts the tab names of the marketplace page, empty means newest
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case "":
		return TabNewest, nil
	case TabNewest, TabOnSale, TabMintables:
		return Tab(s), nil
	}
	return "", ErrInvalidTab
}
