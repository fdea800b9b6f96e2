package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// Mine drains the mempool into new blocks of at most the genesis block size.
// Each block is appended to the chain as soon as its proof of work is
// solved. When at least one block is mined, a single coinbase transaction
// rewarding the miner is added to the mempool for the next round. If the
// mempool is empty, ErrNoTransactions is returned and nothing changes.
func (s *State) Mine(ctx context.Context, miner database.AccountID) ([]database.Block, error) {
	s.evHandler("state: Mine: MINING: started: miner[%s]", miner.Short())
	defer s.evHandler("state: Mine: MINING: completed")

	if s.mempool.Count() == 0 {
		return nil, ErrNoTransactions
	}

	var blocks []database.Block
	for {
		block, err := s.mineNextBlock(ctx)
		if err != nil {
			if errors.Is(err, ErrNoTransactions) {
				break
			}
			return blocks, err
		}

		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		return nil, ErrNoTransactions
	}

	s.mu.Lock()
	reward := s.newReward(miner)
	s.mempool.Upsert(reward)
	s.mu.Unlock()

	s.evHandler("viewer: state: Mine: MINING: reward pending: tx[%s]: %s", reward.Hash, reward)

	return blocks, nil
}

// =============================================================================

// newReward constructs the coinbase transaction for the miner. Times only
// carry seconds, so a reward matching one already in the chain or the
// mempool is moved forward a second until its hash is unique. The caller
// must hold the lock.
func (s *State) newReward(miner database.AccountID) database.Tx {
	mined := chainHashes(s.chain)

	t := s.now()
	for {
		reward := database.NewCoinbaseTx(miner, s.genesis.MiningReward, t)
		if _, exists := mined[reward.Hash]; !exists && !s.mempool.Contains(reward.Hash) {
			return reward
		}
		t = t.Add(time.Second)
	}
}

// mineNextBlock mines one block from the front of the mempool. The proof of
// work is performed without holding the lock. The block is only committed if
// the chain tail didn't change while mining.
func (s *State) mineNextBlock(ctx context.Context) (database.Block, error) {
	tail, batch, err := s.selectBatch()
	if err != nil {
		return database.Block{}, err
	}

	block := database.NewBlock(tail.Index+1, tail.Hash, batch, s.now())
	if err := block.POW(ctx, s.genesis.Difficulty, s.evHandler); err != nil {
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain[len(s.chain)-1].Hash != tail.Hash {
		return database.Block{}, ErrChainChanged
	}

	hashes := make([]string, len(block.Trans))
	for i, tx := range block.Trans {
		hashes[i] = tx.Hash
	}

	s.chain = append(s.chain, block)
	s.mempool.Delete(hashes...)

	s.evHandler("viewer: state: Mine: MINING: block added: blk[%s]: txs[%d]", block, len(block.Trans))

	return block, nil
}

// selectBatch picks the next batch of transactions in mempool order. Each
// candidate is validated against the chain plus the candidates already
// picked. Candidates that fail are removed from the mempool.
func (s *State) selectBatch() (database.Block, []database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := s.chain[len(s.chain)-1]
	mined := chainHashes(s.chain)

	balances := Balances(s.chain)

	var batch []database.Tx
	var invalid []string
	for _, tx := range s.mempool.Copy() {
		if len(batch) == s.genesis.BlockSize {
			break
		}

		if _, exists := mined[tx.Hash]; exists {
			invalid = append(invalid, tx.Hash)
			continue
		}

		if err := s.checkTx(tx, balances[tx.Sender]); err != nil {
			s.evHandler("state: Mine: MINING: dropping tx[%s]: %s", tx.Hash, err)
			invalid = append(invalid, tx.Hash)
			continue
		}

		applyTx(balances, tx)
		batch = append(batch, tx)
	}

	s.mempool.Delete(invalid...)

	if len(batch) == 0 {
		return database.Block{}, nil, ErrNoTransactions
	}

	return tail, batch, nil
}
