package model

// RealizedGainLoss is the result of a single sell, rendered for API responses.
// Available is false when the ticker had no buys to derive a cost basis from;
// in that case CostBasis and RealizedGainLoss are zero and must not be read as "no gain".
type RealizedGainLoss struct {
	TransactionID    string  `json:"transactionId"`
	Ticker           string  `json:"ticker"`
	TransactionDate  string  `json:"transactionDate"`
	SharesSold       float64 `json:"sharesSold"`
	SaleProceeds     float64 `json:"saleProceeds"`
	CostBasis        float64 `json:"costBasis"`
	RealizedGainLoss float64 `json:"realizedGainLoss"`
	Available        bool    `json:"available"`
}
