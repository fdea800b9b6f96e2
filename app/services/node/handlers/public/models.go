package public

import (
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/validate"
)

type account struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

type tx struct {
	Sender       database.AccountID `json:"sender"`
	SenderName   string             `json:"sender_name"`
	Receiver     database.AccountID `json:"reciever"`
	ReceiverName string             `json:"reciever_name"`
	Amount       uint64             `json:"amount"`
	Time         string             `json:"time"`
	Hash         string             `json:"hash"`
	Signature    string             `json:"signature,omitempty"`
}

type status struct {
	Host        string   `json:"host"`
	Version     string   `json:"version"`
	Account     string   `json:"account"`
	ChainLength int      `json:"chain_length"`
	LatestBlock string   `json:"latest_block"`
	Mempool     int      `json:"mempool"`
	Peers       []string `json:"peers"`
}

// =============================================================================

type sendTx struct {
	Receiver string `json:"reciever" validate:"required,account"`
	Amount   uint64 `json:"amount" validate:"required,gt=0"`
}

// Validate checks the data in the model is considered clean.
func (s sendTx) Validate() error {
	return validate.Check(s)
}

type submitTx struct {
	Sender    string `json:"sender" validate:"required,account"`
	Receiver  string `json:"reciever" validate:"required,account"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
	Time      string `json:"time" validate:"required"`
	Hash      string `json:"hash" validate:"required,len=64,hexadecimal"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (s submitTx) Validate() error {
	return validate.Check(s)
}

func (s submitTx) toTx() database.Tx {
	return database.Tx{
		Sender:    database.AccountID(s.Sender),
		Receiver:  database.AccountID(s.Receiver),
		Amount:    s.Amount,
		Time:      s.Time,
		Hash:      s.Hash,
		Signature: s.Signature,
	}
}
