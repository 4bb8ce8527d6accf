package rates

// DefaultCurrencies is the registry installed at boot. Decimals here
// are ledger rounding precision, not on-chain token precision.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Code: "USDT", Blockchain: "ethereum", Token: "usdt", Decimals: 2},
		{Code: "USDC", Blockchain: "ethereum", Token: "usdc", Decimals: 2},
		{Code: "BTC", Blockchain: "bitcoin", Token: "btc", Decimals: 8},
		{Code: "ETH", Blockchain: "ethereum", Token: "eth", Decimals: 8},
	}
}
