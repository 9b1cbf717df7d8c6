package usecase

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/base/metrics"
	"github.com/x-xyz/catalog/base/ptr"
	"github.com/x-xyz/catalog/domain/catalog"
)

const (
	DefaultConcurrency = 4
	DefaultDateLayout  = "1/2/2006"
)

var met = metrics.New("catalog")

type BuilderCfg struct {
	TokenURIResolver catalog.TokenURIResolver
	MetadataResolver catalog.MetadataResolver
	Notifier         catalog.Notifier
	// Concurrency bounds the in-flight resolver calls of one build, 1 resolves records one by one
	Concurrency int
	DateLayout  string
}

type builder struct {
	tokenURI   catalog.TokenURIResolver
	metadata   catalog.MetadataResolver
	notifier   catalog.Notifier
	pool       *goroutines.Pool
	dateLayout string
	validate   *validator.Validate
}

// NewBuilder returns the catalog builder and a func releasing its worker pool
func NewBuilder(cfg *BuilderCfg) (catalog.BuilderUseCase, func()) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	dateLayout := cfg.DateLayout
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	pool := goroutines.NewPool(concurrency)
	b := &builder{
		tokenURI:   cfg.TokenURIResolver,
		metadata:   cfg.MetadataResolver,
		notifier:   cfg.Notifier,
		pool:       pool,
		dateLayout: dateLayout,
		validate:   validator.New(),
	}
	return b, pool.Release
}

type buildTask func() (*catalog.Collectible, error)

// Build resolves listings then mints. The output keeps the input order whatever order the resolvers finish in.
func (b *builder) Build(c bCtx.Ctx, listings []*catalog.ListingCreatedEvent, mints []*catalog.MintStartedEvent) []*catalog.Collectible {
	defer met.BumpTime("build.time").End()

	tasks := make([]buildTask, 0, len(listings)+len(mints))
	for i, l := range listings {
		idx, evt := i, l
		tasks = append(tasks, func() (*catalog.Collectible, error) {
			return b.fromListing(c, idx, evt)
		})
	}
	for i, m := range mints {
		idx, evt := i, m
		tasks = append(tasks, func() (*catalog.Collectible, error) {
			return b.fromMint(c, idx, evt)
		})
	}

	results, errs := b.run(tasks)

	collectibles := make([]*catalog.Collectible, 0, len(tasks))
	seen := make(map[string]int, len(tasks))
	for idx := range tasks {
		if errs[idx] != nil {
			met.BumpSum("record.err", 1)
			b.notifier.Notify(c, errs[idx])
			continue
		}
		col := results[idx]
		if col == nil {
			continue
		}
		if n, ok := seen[col.Uri]; ok {
			// both records stay, the renderer has to cope with the repeated key
			met.BumpSum("duplicate_uri", 1)
			c.WithFields(log.Fields{
				"uri":   col.Uri,
				"first": n,
				"again": len(collectibles),
			}).Warn("duplicate uri in catalog")
		} else {
			seen[col.Uri] = len(collectibles)
		}
		collectibles = append(collectibles, col)
	}
	met.BumpAvg("candidates", float64(len(collectibles)))
	return collectibles
}

func (b *builder) run(tasks []buildTask) ([]*catalog.Collectible, []error) {
	results := make([]*catalog.Collectible, len(tasks))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		idx, task := i, t
		exec := func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					errs[idx] = xerrors.Errorf("panic while resolving record: %v", p)
				}
			}()
			results[idx], errs[idx] = task()
		}
		wg.Add(1)
		if err := b.pool.Schedule(exec); err != nil {
			// pool already released, resolve on the caller goroutine
			exec()
		}
	}
	wg.Wait()
	return results, errs
}

func (b *builder) fromListing(c bCtx.Ctx, idx int, evt *catalog.ListingCreatedEvent) (*catalog.Collectible, error) {
	stream := catalog.StreamListingCreated
	if err := b.validateEvent(stream, idx, evt); err != nil {
		return nil, err
	}
	listingId, err := catalog.ToUint64(evt.ListingId)
	if err != nil {
		return nil, &catalog.MalformedEventError{Stream: stream, Index: idx, Field: "listingId", Err: err}
	}
	nftId, err := catalog.ToUint64(evt.NftId)
	if err != nil {
		return nil, &catalog.MalformedEventError{Stream: stream, Index: idx, Field: "nftId", Err: err}
	}

	uri, err := b.tokenURI.TokenURI(c, nftId)
	if err != nil {
		return nil, &catalog.ResolutionError{Stream: stream, Index: idx, Stage: catalog.StageTokenURI, Err: err}
	}
	if uri == "" {
		return nil, &catalog.ResolutionError{Stream: stream, Index: idx, Stage: catalog.StageTokenURI, Err: catalog.ErrEmptyTokenURI}
	}
	md, err := b.resolveMetadata(c, stream, idx, uri)
	if err != nil {
		return nil, err
	}

	currency := catalog.CurrencyFromCode(evt.PayableCurrencyCode)
	col := &catalog.Collectible{
		ListingId:       ptr.Uint64(listingId),
		Uri:             uri,
		Owner:           evt.Seller,
		Price:           ptr.String(formatAmount(evt.Price)),
		PayableCurrency: &currency,
		IsAuction:       ptr.Bool(evt.IsAuction),
		Date:            b.formatDate(evt.TimestampSeconds),
		HighestBidder:   ptr.NonEmptyString(evt.HighestBidder),
	}
	b.applyMetadata(c, col, md)
	return col, nil
}

func (b *builder) fromMint(c bCtx.Ctx, idx int, evt *catalog.MintStartedEvent) (*catalog.Collectible, error) {
	stream := catalog.StreamMintStarted
	if evt.TokenURI == "" {
		// not resolvable yet, a later run picks it up
		c.WithField("index", idx).Debug("mint without token uri skipped")
		return nil, nil
	}
	col := &catalog.Collectible{
		Uri:   evt.TokenURI,
		Owner: evt.Artist,
	}
	if !catalog.IsAbsent(evt.UsdPrice) {
		currency := catalog.CurrencyUSDC
		col.Price = ptr.String(formatAmount(evt.UsdPrice))
		col.PayableCurrency = &currency
	}
	if !catalog.IsAbsent(evt.MaxTokenId) {
		maxTokenId, err := catalog.ToUint64(evt.MaxTokenId)
		if err != nil {
			return nil, &catalog.MalformedEventError{Stream: stream, Index: idx, Field: "maxTokenId", Err: err}
		}
		col.MaxTokenId = ptr.Uint64(maxTokenId)
	}

	md, err := b.resolveMetadata(c, stream, idx, evt.TokenURI)
	if err != nil {
		return nil, err
	}
	b.applyMetadata(c, col, md)
	return col, nil
}

func (b *builder) resolveMetadata(c bCtx.Ctx, stream catalog.Stream, idx int, uri string) (*catalog.Metadata, error) {
	hash, err := catalog.ContentHash(uri)
	if err != nil {
		return nil, &catalog.ResolutionError{Stream: stream, Index: idx, Stage: catalog.StageContentHash, Err: xerrors.Errorf("%s: %w", uri, err)}
	}
	md, err := b.metadata.Resolve(c, hash)
	if err != nil {
		return nil, &catalog.ResolutionError{Stream: stream, Index: idx, Stage: catalog.StageMetadata, Err: err}
	}
	return md, nil
}

func (b *builder) applyMetadata(c bCtx.Ctx, col *catalog.Collectible, md *catalog.Metadata) {
	if ignored := col.ApplyMetadata(md); len(ignored) > 0 {
		c.WithFields(log.Fields{
			"uri":  col.Uri,
			"keys": ignored,
		}).Warn("metadata overrides ignored")
	}
}

func (b *builder) validateEvent(stream catalog.Stream, idx int, evt interface{}) error {
	err := b.validate.Struct(evt)
	if err == nil {
		return nil
	}
	field := ""
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		field = lowerFirst(fieldErrs[0].Field())
		err = fmt.Errorf("%s check failed", fieldErrs[0].Tag())
	}
	return &catalog.MalformedEventError{Stream: stream, Index: idx, Field: field, Err: err}
}

func (b *builder) formatDate(ts *big.Int) *string {
	if ts == nil || !ts.IsInt64() {
		return nil
	}
	return ptr.String(time.Unix(ts.Int64(), 0).UTC().Format(b.dateLayout))
}

// formatAmount renders a smallest-unit amount without going through floating point
func formatAmount(amount *big.Int) string {
	return decimal.NewFromBigInt(amount, 0).String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
