// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`          // Time of the genesis block, must be the same for every node.
	Version      string    `json:"version"`       // Protocol version peers must match.
	Difficulty   int       `json:"difficulty"`    // Number of leading hex 0's a block hash needs.
	MiningReward uint64    `json:"mining_reward"` // Reward for mining a round of blocks.
	BlockSize    int       `json:"block_size"`    // The maximum number of transactions in a block.
}

// Default returns the genesis information used when no file exists.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Version:      "0.5.0",
		Difficulty:   4,
		MiningReward: 60,
		BlockSize:    10,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. If the file does not exist the
// default genesis information is returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the consensus parameters are usable.
func (g Genesis) Validate() error {
	if g.Difficulty < 0 || g.Difficulty > 64 {
		return fmt.Errorf("difficulty out of range: %d", g.Difficulty)
	}

	if g.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive: %d", g.BlockSize)
	}

	if g.Version == "" {
		return errors.New("version is required")
	}

	return nil
}

// Block constructs the genesis block for this genesis information.
func (g Genesis) Block() database.Block {
	return database.Genesis(g.Date)
}
