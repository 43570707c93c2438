// Package popup hosts the pricing engine for one item popup: it resolves parent bundles,
// runs classification, offers and pricing, and hands the finished record to the cart.
package popup

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"menupricing/internal/catalog"
	"menupricing/internal/classify"
	"menupricing/internal/customize"
	"menupricing/internal/descriptor"
	"menupricing/internal/metrics"
	"menupricing/internal/offer"
	"menupricing/internal/pricing"
)

const (
	defaultFetchTimeout    = 5 * time.Second
	defaultFetchMaxElapsed = 8 * time.Second
)

type CatalogSource interface {
	GetItem(ctx context.Context, id string) (*catalog.Item, error)
}

// CartSink receives finished records. Push reports false when the session already handed one off.
type CartSink interface {
	Push(ctx context.Context, record customize.Record) (bool, error)
}

type Options struct {
	// FetchTimeout bounds a single catalog round trip.
	FetchTimeout time.Duration
	// FetchMaxElapsed bounds all retries of one lookup.
	FetchMaxElapsed time.Duration
	Now             func() time.Time
}

type Service struct {
	source  CatalogSource
	sink    CartSink
	logger  *zap.Logger
	metrics *metrics.Metrics
	opts    Options

	offers  *offer.Resolver
	pricer  *pricing.Resolver
	builder *customize.Builder
}

// Request is one "add to cart" action. SessionID should come from NewSessionID and stay the
// same for every push from the same popup.
type Request struct {
	Item      *catalog.Item
	Selection customize.Selection
	SessionID string
	// DrinkPrices overrides catalog lookups of the chosen drinks.
	DrinkPrices map[string]float64
}

type Result struct {
	Item     *catalog.Item
	Category classify.Category
	Option   *catalog.PricingOption
	Offer    offer.Offer
	Quote    pricing.Quote
	Record   customize.Record
	// Stored is false when the cart already held a record for the session.
	Stored bool
}

func New(source CatalogSource, sink CartSink, logger *zap.Logger, m *metrics.Metrics, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.FetchMaxElapsed <= 0 {
		opts.FetchMaxElapsed = defaultFetchMaxElapsed
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: m,
		opts:    opts,
		offers:  offer.NewResolver(opts.Now),
		pricer:  pricing.NewResolver(logger),
		builder: customize.NewBuilder(),
	}
}

func (s *Service) NewSessionID() string {
	return uuid.NewString()
}

// ResolveItem swaps a pre-selected configuration for its parent bundle. Any failure to load
// the parent returns the item unchanged.
func (s *Service) ResolveItem(ctx context.Context, item *catalog.Item) *catalog.Item {
	if item == nil || item.ParentID == "" || item.ParentID == item.ID || s.source == nil {
		return item
	}

	parent, err := s.fetch(ctx, item.ParentID)
	if err != nil {
		s.logger.Warn("Parent bundle unavailable, using item as-is",
			zap.String("item_id", item.ID),
			zap.String("parent_id", item.ParentID),
			zap.Error(err))
		s.metrics.ParentFallback()
		return item
	}
	return parent
}

// Quote runs the whole engine without handing the record off.
func (s *Service) Quote(ctx context.Context, req Request) Result {
	item := s.ResolveItem(ctx, req.Item)
	if item == nil {
		item = &catalog.Item{}
	}

	category := classify.Classify(item)
	option := selectOption(item, category, req.Selection.OptionID)
	active := s.offers.Resolve(item, option)

	var optionDetails catalog.OfferDetails
	if option != nil {
		optionDetails = option.OfferDetails
	}
	globals := descriptor.ResolveOverrides(optionDetails, item.OfferDetails)

	supplements := pricing.PackSupplementCharge(item, req.Selection.Supplements, globals, req.Selection.GlobalSupplements)
	drinks := pricing.DrinkCharge(s.drinkPrices(ctx, req), req.Selection.DrinkQuantities, active.FreeDrinks)

	quote := s.pricer.Resolve(pricing.Input{
		Item:              item,
		Category:          category,
		Option:            option,
		Quantity:          req.Selection.Quantity,
		SupplementsPrice:  supplements,
		DrinksPrice:       drinks,
		VariantQuantities: pricing.VariantQuantities(item),
	})
	if quote.MissingOption {
		s.metrics.MissingOption(category.String())
	}

	record := s.builder.Build(customize.Input{
		Item:      item,
		Option:    option,
		Selection: req.Selection,
		Globals:   globals,
		Offer:     active,
		Quote:     &quote,
		SessionID: req.SessionID,
	})

	return Result{
		Item:     item,
		Category: category,
		Option:   option,
		Offer:    active,
		Quote:    quote,
		Record:   record,
	}
}

// AddToCart quotes the request and pushes the record. Only the hand-off can fail.
func (s *Service) AddToCart(ctx context.Context, req Request) (Result, error) {
	res := s.Quote(ctx, req)
	if s.sink == nil {
		return res, errors.New("popup: no cart configured")
	}

	stored, err := s.sink.Push(ctx, res.Record)
	if err != nil {
		s.logger.Error("Failed to hand off cart record",
			zap.String("item_id", res.Record.MenuItemID),
			zap.String("session_id", res.Record.PopupSessionID),
			zap.Error(err))
		return res, err
	}

	res.Stored = stored
	if !stored {
		s.logger.Info("Cart record already pushed for session",
			zap.String("session_id", res.Record.PopupSessionID))
		s.metrics.DuplicatePush()
		return res, nil
	}

	s.metrics.RecordBuilt(res.Category.String())
	s.logger.Info("Cart record handed off",
		zap.String("item_id", res.Record.MenuItemID),
		zap.String("category", res.Record.Category),
		zap.String("total", res.Quote.TotalPrice.StringFixed(2)))
	return res, nil
}

// selectOption honours an explicit choice. Without one, categories that need a size get the
// default option; limited offers stay option-less since the option is an optional upcharge.
func selectOption(item *catalog.Item, category classify.Category, optionID string) *catalog.PricingOption {
	if opt, ok := item.Option(optionID); ok {
		return opt
	}
	if category.IsSizeRequired() {
		return item.DefaultOption(item.ID)
	}
	return nil
}

func (s *Service) drinkPrices(ctx context.Context, req Request) map[string]float64 {
	prices := make(map[string]float64, len(req.Selection.DrinkQuantities))
	for id, qty := range req.Selection.DrinkQuantities {
		if qty <= 0 {
			continue
		}
		if price, ok := req.DrinkPrices[id]; ok {
			prices[id] = price
			continue
		}
		if s.source == nil {
			continue
		}
		drink, err := s.fetch(ctx, id)
		if err != nil {
			s.logger.Warn("Drink price unavailable", zap.String("drink_id", id), zap.Error(err))
			continue
		}
		prices[id] = drink.Price
	}
	return prices
}

// fetch retries transient catalog errors with backoff. A missing item is not retried.
func (s *Service) fetch(ctx context.Context, id string) (*catalog.Item, error) {
	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = 100 * time.Millisecond
	retryPolicy.MaxInterval = time.Second
	retryPolicy.MaxElapsedTime = s.opts.FetchMaxElapsed

	var item *catalog.Item
	err := backoff.Retry(
		func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
			defer cancel()

			got, err := s.source.GetItem(attemptCtx, id)
			if errors.Is(err, catalog.ErrItemNotFound) {
				return backoff.Permanent(err)
			}
			if err != nil {
				return err
			}
			if got == nil {
				return backoff.Permanent(catalog.ErrItemNotFound)
			}
			item = got
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
