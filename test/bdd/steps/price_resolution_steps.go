package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/material"
)

type priceResolutionContext struct {
	materials map[string]uuid.UUID
	prices    []material.Price
	resolved  *material.Price
	err       error
}

func (ctx *priceResolutionContext) reset() {
	ctx.materials = make(map[string]uuid.UUID)
	ctx.prices = nil
	ctx.resolved = nil
	ctx.err = nil
}

func (ctx *priceResolutionContext) materialID(name string) uuid.UUID {
	id, ok := ctx.materials[name]
	if !ok {
		id = uuid.New()
		ctx.materials[name] = id
	}
	return id
}

func (ctx *priceResolutionContext) addPrice(name, price, from string, to *string) error {
	amount, err := parseDecimal(price)
	if err != nil {
		return err
	}
	validFrom, err := parseDate(from)
	if err != nil {
		return err
	}
	p := material.Price{
		ID:               uuid.New(),
		MaterialID:       ctx.materialID(name),
		PricePerMaterial: amount,
		ValidFrom:        validFrom,
	}
	if to != nil {
		validTo, err := parseDate(*to)
		if err != nil {
			return err
		}
		p.ValidTo = &validTo
	}
	ctx.prices = append(ctx.prices, p)
	return nil
}

func (ctx *priceResolutionContext) materialCostsFromUntil(name, price, from, to string) error {
	return ctx.addPrice(name, price, from, &to)
}

func (ctx *priceResolutionContext) materialCostsFrom(name, price, from string) error {
	return ctx.addPrice(name, price, from, nil)
}

// thePriceHistoryOf reads a price | from | until table; an empty until is open-ended
func (ctx *priceResolutionContext) thePriceHistoryOf(name string, table *messages.PickleTable) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("price table needs a header and at least one row")
	}
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 3 {
			return fmt.Errorf("expected 3 columns, got %d", len(row.Cells))
		}
		price, from, until := row.Cells[0].Value, row.Cells[1].Value, row.Cells[2].Value
		var to *string
		if until != "" {
			to = &until
		}
		if err := ctx.addPrice(name, price, from, to); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *priceResolutionContext) thePriceIsResolvedAsOf(name, date string) error {
	asOf, err := parseDate(date)
	if err != nil {
		return err
	}
	history := material.NewPriceHistory(ctx.materialID(name), ctx.prices)
	price, err := history.ResolveAt(asOf)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.resolved = &price
	return nil
}

func (ctx *priceResolutionContext) theResolvedPriceShouldBe(price string) error {
	if ctx.resolved == nil {
		return fmt.Errorf("expected price %s, got error: %v", price, ctx.err)
	}
	return expectDecimal("price", ctx.resolved.PricePerMaterial, price)
}

func (ctx *priceResolutionContext) noPriceShouldBeAvailable() error {
	var unavailable *material.PriceUnavailableError
	if !errors.As(ctx.err, &unavailable) {
		return fmt.Errorf("expected PriceUnavailableError, got resolved=%v err=%v", ctx.resolved, ctx.err)
	}
	return nil
}

func (ctx *priceResolutionContext) thePriceHistoryShouldBeReportedAsOverlapping() error {
	for name, id := range ctx.materials {
		err := material.NewPriceHistory(id, ctx.prices).Validate()
		var overlapping *material.OverlappingPriceError
		if !errors.As(err, &overlapping) {
			return fmt.Errorf("expected overlapping prices for %s, got %v", name, err)
		}
	}
	return nil
}

// InitializePriceResolutionScenario registers price history steps
func InitializePriceResolutionScenario(sc *godog.ScenarioContext) {
	priceCtx := &priceResolutionContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		priceCtx.reset()
		return ctx, nil
	})

	sc.Step(`^material "([^"]*)" costs (\d+) from (\d{4}-\d{2}-\d{2}) until (\d{4}-\d{2}-\d{2})$`, priceCtx.materialCostsFromUntil)
	sc.Step(`^material "([^"]*)" costs (\d+) from (\d{4}-\d{2}-\d{2})$`, priceCtx.materialCostsFrom)
	sc.Step(`^the price history of "([^"]*)":$`, priceCtx.thePriceHistoryOf)
	sc.Step(`^the price of "([^"]*)" is resolved as of (\d{4}-\d{2}-\d{2})$`, priceCtx.thePriceIsResolvedAsOf)
	sc.Step(`^the resolved price should be (\d+)$`, priceCtx.theResolvedPriceShouldBe)
	sc.Step(`^no price should be available$`, priceCtx.noPriceShouldBeAvailable)
	sc.Step(`^the price history should be reported as overlapping$`, priceCtx.thePriceHistoryShouldBeReportedAsOverlapping)
}
