package rates

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyNotFound = errors.New("currency not registered")
	ErrRateUnavailable  = errors.New("exchange rate unavailable for pair")
)

// Currency is a registry row. Decimals is the precision every ledger
// amount in this currency is rounded to.
type Currency struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Code       string    `gorm:"column:code;size:16;not null;uniqueIndex:ux_currencies_code"`
	Blockchain string    `gorm:"column:blockchain;size:32;not null;index:idx_currencies_chain_token,priority:1"`
	Token      string    `gorm:"column:token;size:32;not null;index:idx_currencies_chain_token,priority:2"`
	Decimals   int32     `gorm:"column:decimals;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Currency) TableName() string { return "currencies" }

// ExchangeRate is a point-in-time USD quote for a token. Rows are
// never updated; origination keeps the rate it priced against so
// historical LTV recomputation stays reproducible.
type ExchangeRate struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Blockchain string          `gorm:"column:blockchain;size:32;not null;index:idx_rates_lookup,priority:1"`
	Token      string          `gorm:"column:token;size:32;not null;index:idx_rates_lookup,priority:2"`
	Rate       decimal.Decimal `gorm:"column:rate;type:decimal(30,12);not null"`
	AsOf       time.Time       `gorm:"column:as_of;not null;index:idx_rates_lookup,priority:3"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }
