package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/nameservice"
)

// Transactions prints the mined transactions the specified wallet took
// part in.
func Transactions(args conf.Args, chain []database.Block, ns *nameservice.NameService) error {
	acct := database.AccountID(args.Num(1))
	if acct == "" {
		return errors.New("wallet address is required")
	}

	fmt.Printf("Wallet: %s  Name: %s\n\n", acct, lookup(ns, acct))

	for _, block := range chain {
		for _, tx := range block.Trans {
			if !tx.Touches(acct) {
				continue
			}

			fmt.Printf("Block: %d  Hash: %s  From: %s  To: %s  Amount: %d  Time: %s\n",
				block.Index, tx.Hash, lookup(ns, tx.Sender), lookup(ns, tx.Receiver), tx.Amount, tx.Time)
		}
	}

	return nil
}
