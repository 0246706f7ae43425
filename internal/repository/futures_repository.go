package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nctrnlman/api-crypto/internal/model"
)

// FuturesRepository persists the normalized futures entities. Exchange, coin
// and product are find-or-create against their unique name; trade data is
// append-only.
type FuturesRepository interface {
	GetOrCreateExchange(ctx context.Context, name string) (*model.Exchange, error)
	GetOrCreateCoin(ctx context.Context, name string) (*model.Coin, error)
	GetOrCreateProduct(ctx context.Context, name string, exchangeID, coinID uint) (*model.Product, error)
	CreateTradeData(ctx context.Context, td *model.TradeData) error
	CountTradeData(ctx context.Context) (int64, error)
}

type gormFuturesRepository struct {
	db *gorm.DB
}

func NewGormFuturesRepository(db *gorm.DB) FuturesRepository {
	return &gormFuturesRepository{db: db}
}

// onNameConflictDoNothing makes the insert a no-op when the unique name
// already exists, so concurrent writers of the same name race on the index
// instead of failing on it. The follow-up read returns whichever row won.
var onNameConflictDoNothing = clause.OnConflict{
	Columns:   []clause.Column{{Name: "name"}},
	DoNothing: true,
}

func (r *gormFuturesRepository) GetOrCreateExchange(ctx context.Context, name string) (*model.Exchange, error) {
	exchange := &model.Exchange{Name: name}
	if err := r.db.WithContext(ctx).Clauses(onNameConflictDoNothing).Create(exchange).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(exchange).Error; err != nil {
		return nil, err
	}
	return exchange, nil
}

func (r *gormFuturesRepository) GetOrCreateCoin(ctx context.Context, name string) (*model.Coin, error) {
	coin := &model.Coin{Name: name}
	if err := r.db.WithContext(ctx).Clauses(onNameConflictDoNothing).Create(coin).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(coin).Error; err != nil {
		return nil, err
	}
	return coin, nil
}

// GetOrCreateProduct links the product to the given exchange and coin only
// when the insert actually happens. An existing product keeps its original
// linkage even if the caller resolved a different exchange or coin.
func (r *gormFuturesRepository) GetOrCreateProduct(ctx context.Context, name string, exchangeID, coinID uint) (*model.Product, error) {
	product := &model.Product{Name: name, ExchangeID: exchangeID, CoinID: coinID}
	if err := r.db.WithContext(ctx).Clauses(onNameConflictDoNothing).Create(product).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *gormFuturesRepository) CreateTradeData(ctx context.Context, td *model.TradeData) error {
	return r.db.WithContext(ctx).Create(td).Error
}

func (r *gormFuturesRepository) CountTradeData(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TradeData{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
