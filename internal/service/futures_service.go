package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nctrnlman/api-crypto/internal/model"
	"github.com/nctrnlman/api-crypto/internal/repository"
	"github.com/nctrnlman/api-crypto/internal/velo"
)

// Config holds the snapshot parameters the service applies on the read path.
type Config struct {
	// Coins are the symbols every snapshot covers. A coin with no matching
	// vendor product still gets a key with an empty list.
	Coins []string

	// Exchanges narrows the vendor rows query.
	Exchanges []string

	// Window is how far back from now each snapshot reaches.
	Window time.Duration

	// Resolution is the vendor resolution, in minutes per row.
	Resolution int

	// Now stubs the clock in tests. Defaults to time.Now.
	Now func() time.Time
}

// FuturesService is the normalizer between the vendor's nested response shape
// and the flat persisted entities. The read path shapes, the write path
// reconciles and appends.
type FuturesService struct {
	repo   repository.FuturesRepository
	market velo.MarketDataClient
	logger *logrus.Logger
	cfg    Config
}

func NewFuturesService(repo repository.FuturesRepository, market velo.MarketDataClient, logger *logrus.Logger, cfg Config) *FuturesService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &FuturesService{
		repo:   repo,
		market: market,
		logger: logger,
		cfg:    cfg,
	}
}

// BuildSnapshot fetches the funding-rate/trade-count series for every vendor
// product matching one of the configured coins. Matching is a plain substring
// test on the product identifier. Any vendor failure aborts the whole
// snapshot; there is no partial result.
func (s *FuturesService) BuildSnapshot(ctx context.Context) (model.FuturesSnapshot, error) {
	futuresList, err := s.market.Futures(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch futures catalog: %w", err)
	}

	now := s.cfg.Now()
	begin := now.Add(-s.cfg.Window).UnixMilli()
	end := now.UnixMilli()

	snapshot := make(model.FuturesSnapshot, len(s.cfg.Coins))

	for _, coin := range s.cfg.Coins {
		matched := filterProducts(futuresList, coin)
		series := make([]model.ProductSeries, 0, len(matched))

		for _, product := range matched {
			rows, err := s.fetchRows(ctx, velo.RowsParams{
				Type:       "futures",
				Columns:    []string{"funding_rate", "total_trades"},
				Exchanges:  s.cfg.Exchanges,
				Products:   []string{product.Product},
				Begin:      begin,
				End:        end,
				Resolution: s.cfg.Resolution,
			})
			if err != nil {
				return nil, fmt.Errorf("fetch rows for %s: %w", product.Product, err)
			}
			series = append(series, model.ProductSeries{
				Product: product.Product,
				Data:    rows,
			})
		}

		snapshot[coin] = series
	}

	return snapshot, nil
}

// fetchRows drains the lazy vendor iterator into a list, preserving vendor
// order.
func (s *FuturesService) fetchRows(ctx context.Context, params velo.RowsParams) ([]model.FuturesRow, error) {
	it, err := s.market.Rows(ctx, params)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	rows := make([]model.FuturesRow, 0)
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// IngestSnapshot reconciles a snapshot-shaped payload into the store. Per
// row: resolve the exchange and the row-level product label (each sentinel-
// defaulted when absent), find-or-create the entities, then append one trade
// record. The first store failure stops the remaining loop; rows already
// written stay committed. Returns the number of trade records written.
func (s *FuturesService) IngestSnapshot(ctx context.Context, snapshot model.FuturesSnapshot) (int, error) {
	written := 0

	for coinName, series := range snapshot {
		coin, err := s.repo.GetOrCreateCoin(ctx, coinName)
		if err != nil {
			return written, fmt.Errorf("resolve coin %s: %w", coinName, err)
		}

		for _, ps := range series {
			for _, row := range ps.Data {
				exchange, err := s.repo.GetOrCreateExchange(ctx, row.ExchangeOrDefault())
				if err != nil {
					return written, fmt.Errorf("resolve exchange: %w", err)
				}

				product, err := s.repo.GetOrCreateProduct(ctx, row.ProductOrDefault(), exchange.ID, coin.ID)
				if err != nil {
					return written, fmt.Errorf("resolve product: %w", err)
				}

				td := &model.TradeData{
					Time:        time.UnixMilli(row.Time),
					FundingRate: row.FundingRate,
					TotalTrades: row.TotalTrades,
					ProductID:   product.ID,
				}
				if err := s.repo.CreateTradeData(ctx, td); err != nil {
					return written, fmt.Errorf("save trade data: %w", err)
				}
				written++
			}
		}
	}

	s.logger.Infof("Ingested %d trade records", written)
	return written, nil
}

// TradeDataCount reports how many trade records the store holds.
func (s *FuturesService) TradeDataCount(ctx context.Context) (int64, error) {
	return s.repo.CountTradeData(ctx)
}

func filterProducts(list []velo.FuturesProduct, coin string) []velo.FuturesProduct {
	matched := make([]velo.FuturesProduct, 0)
	for _, p := range list {
		if strings.Contains(p.Product, coin) {
			matched = append(matched, p)
		}
	}
	return matched
}
