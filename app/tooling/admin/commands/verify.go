package commands

import (
	"fmt"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
)

// Verify runs the full chain validation over the snapshot.
func Verify(chain []database.Block, gen genesis.Genesis) error {
	st, err := state.New(state.Config{
		Genesis: gen,
	})
	if err != nil {
		return err
	}

	if err := st.IsChainValid(chain); err != nil {
		return err
	}

	fmt.Printf("Chain is valid: blocks[%d] latest[%s]\n", len(chain), chain[len(chain)-1].Hash)

	return nil
}
