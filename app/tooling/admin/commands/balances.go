// Package commands contains the functionality for the admin tool.
package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/nameservice"
)

// Balances prints the balance of every account in the chain, or only the
// specified account.
func Balances(args conf.Args, chain []database.Block, ns *nameservice.NameService) error {
	onlyAct := database.AccountID(args.Num(1))

	fmt.Printf("LatestBlockHash: %s\n\n", chain[len(chain)-1].Hash)

	bals := state.Balances(chain)

	accounts := slices.Sorted(maps.Keys(bals))

	for _, acct := range accounts {
		if onlyAct != "" && acct != onlyAct {
			continue
		}
		fmt.Printf("Account: %s  Name: %s  Balance: %d\n", acct, lookup(ns, acct), bals[acct])
	}

	return nil
}

func lookup(ns *nameservice.NameService, acct database.AccountID) string {
	if ns == nil {
		return acct.Short()
	}
	return ns.Lookup(acct)
}
