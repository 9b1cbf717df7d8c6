package notify

import (
	"errors"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/base/metrics"
	"github.com/x-xyz/catalog/domain/catalog"
)

var met = metrics.New("notify")

const (
	MsgListing     = "Error fetching listed collectibles"
	MsgMint        = "Error fetching collection started NFTs"
	MsgCollectible = "Error fetching collectible"
)

// Title names the failed stream the way the marketplace page reports it
func Title(err error) string {
	switch streamOf(err) {
	case catalog.StreamListingCreated:
		return MsgListing
	case catalog.StreamMintStarted:
		return MsgMint
	}
	return MsgCollectible
}

func streamOf(err error) catalog.Stream {
	var resErr *catalog.ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Stream
	}
	var malformed *catalog.MalformedEventError
	if errors.As(err, &malformed) {
		return malformed.Stream
	}
	return ""
}

type logNotifier struct{}

// NewLogNotifier reports failures to the log and metrics only
func NewLogNotifier() catalog.Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(c bCtx.Ctx, err error) {
	stream := streamOf(err)
	met.BumpSum("record.err", 1, "stream", string(stream))
	c.WithFields(log.Fields{
		"stream": stream,
		"err":    err,
	}).Warn(Title(err))
}

type multiNotifier []catalog.Notifier

func NewMultiNotifier(notifiers ...catalog.Notifier) catalog.Notifier {
	return multiNotifier(notifiers)
}

func (m multiNotifier) Notify(c bCtx.Ctx, err error) {
	for _, n := range m {
		n.Notify(c, err)
	}
}
