package model

import "time"

// Sentinel names used when an ingested row omits the optional
// exchange/product fields.
const (
	DefaultExchangeName = "DefaultExchange"
	DefaultProductName  = "DefaultProduct"
)

// Exchange is a venue listing futures products (e.g. "binance-futures").
// Created lazily the first time a row mentions the name.
type Exchange struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Exchange) TableName() string {
	return "exchange"
}

// Coin is a base asset symbol (e.g. "BTC").
type Coin struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Coin) TableName() string {
	return "coin"
}

// Product is a listed futures contract. The exchange/coin linkage is fixed
// at creation time: later rows claiming a different exchange or coin for the
// same product name do not update it.
type Product struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	Name       string `gorm:"column:name;uniqueIndex;not null" json:"name"`
	ExchangeID uint   `gorm:"column:exchange_id;not null" json:"exchange_id"`
	CoinID     uint   `gorm:"column:coin_id;not null" json:"coin_id"`

	Exchange *Exchange `gorm:"foreignKey:ExchangeID" json:"-"`
	Coin     *Coin     `gorm:"foreignKey:CoinID" json:"-"`
}

func (Product) TableName() string {
	return "product"
}

// TradeData is one ingested time-series row. Append-only; rows are never
// deduplicated by time.
type TradeData struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Time        time.Time `gorm:"column:time;not null" json:"time"`
	FundingRate float64   `gorm:"column:funding_rate;not null" json:"funding_rate"`
	TotalTrades int64     `gorm:"column:total_trades;not null" json:"total_trades"`
	ProductID   uint      `gorm:"column:product_id;not null" json:"product_id"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (TradeData) TableName() string {
	return "trade_data"
}

// FuturesRow is one vendor time-series row on the wire. Exchange and Product
// are optional; an empty value falls back to the sentinel defaults during
// ingestion.
type FuturesRow struct {
	Exchange    string  `json:"exchange,omitempty"`
	Product     string  `json:"product,omitempty"`
	Time        int64   `json:"time"`
	FundingRate float64 `json:"funding_rate"`
	TotalTrades int64   `json:"total_trades"`
}

// ExchangeOrDefault returns the row's exchange name, sentinel-defaulted.
func (r FuturesRow) ExchangeOrDefault() string {
	if r.Exchange == "" {
		return DefaultExchangeName
	}
	return r.Exchange
}

// ProductOrDefault returns the row's own product label, sentinel-defaulted.
// Note this is deliberately the row-level field, not the label the series is
// grouped under.
func (r FuturesRow) ProductOrDefault() string {
	if r.Product == "" {
		return DefaultProductName
	}
	return r.Product
}

// ProductSeries groups the rows fetched for a single vendor product.
type ProductSeries struct {
	Product string       `json:"product"`
	Data    []FuturesRow `json:"data"`
}

// FuturesSnapshot maps a coin symbol to the series of every vendor product
// matching it. This is the wire payload between the read and write endpoints:
// the GET response body and the POST request body share this shape.
type FuturesSnapshot map[string][]ProductSeries

// RowCount returns the total number of rows across all coins and series.
func (s FuturesSnapshot) RowCount() int {
	n := 0
	for _, series := range s {
		for _, ps := range series {
			n += len(ps.Data)
		}
	}
	return n
}
