package gateway

import "strconv"

// Wallet is a wallet as reported by the gateway.
type Wallet struct {
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
}

// Kind returns the wallet type, or "unknown" when the gateway omitted it.
func (w Wallet) Kind() string {
	if w.Type == "" {
		return "unknown"
	}
	return w.Type
}

// TxRequest is the body of POST /transaction/send.
type TxRequest struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	GasPrice int     `json:"gasPrice"`
}

// Transaction is one entry of GET /transaction/recent.
type Transaction struct {
	Hash   string  `json:"hash"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// ChainStats is the body of GET /network/status. Every field is optional.
type ChainStats struct {
	BlockHeight       *uint64  `json:"blockHeight,omitempty"`
	TotalTransactions *uint64  `json:"totalTransactions,omitempty"`
	Difficulty        *float64 `json:"difficulty,omitempty"`
}

// HeightString renders the block height, or "N/A".
func (s ChainStats) HeightString() string {
	return optUint(s.BlockHeight)
}

// TotalTransactionsString renders the transaction count, or "N/A".
func (s ChainStats) TotalTransactionsString() string {
	return optUint(s.TotalTransactions)
}

// DifficultyString renders the difficulty, or "N/A".
func (s ChainStats) DifficultyString() string {
	if s.Difficulty == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*s.Difficulty, 'f', -1, 64)
}

func optUint(v *uint64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatUint(*v, 10)
}

type balanceResult struct {
	Balance *float64 `json:"balance"`
}

type sendResult struct {
	Hash string `json:"hash"`
}
