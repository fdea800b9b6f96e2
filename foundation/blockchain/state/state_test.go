package state_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

// =============================================================================

// clock hands out a new second on every call so transactions created in a
// row never share a hash.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2021, time.March, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(time.Second)
	return c.t
}

type wallet struct {
	pk      *ecdsa.PrivateKey
	account database.AccountID
}

func newWallet(t *testing.T) wallet {
	t.Helper()

	pk, err := signature.GenerateKey()
	ifErrFailNow(t, err)

	return wallet{pk: pk, account: database.PublicKeyToAccountID(pk.PublicKey)}
}

func testGenesis() genesis.Genesis {
	g := genesis.Default()
	g.Difficulty = 1
	g.MiningReward = 100
	g.BlockSize = 10

	return g
}

func newState(t *testing.T, clk *clock) *state.State {
	t.Helper()

	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Genesis: testGenesis(),
		Now:     clk.Now,
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	ifErrFailNow(t, err)

	return st
}

// fund gives the wallet a mined balance by mining a coinbase transaction
// for it. The miner's own reward is left pending in the mempool.
func fund(t *testing.T, st *state.State, clk *clock, w wallet, miner wallet) {
	t.Helper()

	st.UpsertMempool([]database.Tx{database.NewCoinbaseTx(w.account, 100, clk.Now())})

	_, err := st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)
}

// remine relinks and solves every block from the index forward.
func remine(t *testing.T, chain []database.Block, from int, difficulty int) {
	t.Helper()

	for i := from; i < len(chain); i++ {
		chain[i].PrevHash = chain[i-1].Hash
		err := chain[i].POW(context.Background(), difficulty, func(string, ...any) {})
		ifErrFailNow(t, err)
	}
}

// =============================================================================

func Test_MineAndBalance(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	g := st.RetrieveGenesis()

	t.Log("Given the need to mine transactions into the chain.")
	{
		if st.ChainLength() != 1 || st.Balance(a.account) != 0 {
			t.Fatalf("\t%s\tShould start with the genesis block and no balances.", failed)
		}
		t.Logf("\t%s\tShould start with the genesis block and no balances.", success)

		if _, err := st.Mine(context.Background(), miner.account); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould not mine with an empty mempool: %v", failed, err)
		}
		if st.ChainLength() != 1 || len(st.RetrieveMempool()) != 0 {
			t.Fatalf("\t%s\tShould not change anything when the mempool is empty.", failed)
		}
		t.Logf("\t%s\tShould not mine with an empty mempool.", success)

		fund(t, st, clk, a, miner)

		if st.Balance(a.account) != 100 {
			t.Fatalf("\t%s\tShould have a balance of 100 after funding, got %d.", failed, st.Balance(a.account))
		}
		t.Logf("\t%s\tShould have a balance of 100 after funding.", success)

		pending := st.RetrieveMempool()
		if len(pending) != 1 || !pending[0].IsCoinbase() || pending[0].Receiver != miner.account || pending[0].Amount != g.MiningReward {
			t.Fatalf("\t%s\tShould have the miner reward pending: %v", failed, pending)
		}
		t.Logf("\t%s\tShould have the miner reward pending.", success)

		if _, err := st.SubmitTransaction(a.pk, a.account, b.account, 10); err != nil {
			t.Fatalf("\t%s\tShould be able to submit a transfer: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to submit a transfer.", success)

		blocks, err := st.Mine(context.Background(), miner.account)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the transfer: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine the transfer.", success)

		for _, block := range blocks {
			if !database.IsHashSolved(g.Difficulty, block.Hash) || block.Hash != block.CalculateHash() {
				t.Fatalf("\t%s\tShould have a solved hash matching the recomputation: %s", failed, block)
			}
		}
		t.Logf("\t%s\tShould have solved hashes for every mined block.", success)

		if st.ChainLength() != 3 {
			t.Fatalf("\t%s\tShould have 3 blocks, got %d.", failed, st.ChainLength())
		}

		if st.Balance(a.account) != 90 || st.Balance(b.account) != 10 {
			t.Logf("\t%s\tgot: a[%d] b[%d]", failed, st.Balance(a.account), st.Balance(b.account))
			t.Logf("\t%s\texp: a[90] b[10]", failed)
			t.Fatalf("\t%s\tShould have moved 10 from a to b.", failed)
		}
		t.Logf("\t%s\tShould have moved 10 from a to b.", success)

		var minted int64
		for _, block := range st.RetrieveChain() {
			for _, tx := range block.Trans {
				if tx.IsCoinbase() {
					minted += int64(tx.Amount)
				}
			}
		}

		var total int64
		for _, balance := range st.Balances() {
			total += balance
		}

		if total != minted || total != 200 {
			t.Fatalf("\t%s\tShould only create value through rewards: total[%d] minted[%d]", failed, total, minted)
		}
		t.Logf("\t%s\tShould only create value through rewards.", success)

		var history []database.Tx
		for tx := range st.TransactionHistory(a.account) {
			history = append(history, tx)
		}

		if len(history) != 2 || !history[0].IsCoinbase() || history[1].Receiver != b.account {
			t.Fatalf("\t%s\tShould get back the history in chain order: %v", failed, history)
		}
		t.Logf("\t%s\tShould get back the history in chain order.", success)

		if err := st.IsChainValid(st.RetrieveChain()); err != nil {
			t.Fatalf("\t%s\tShould have a valid chain after mining: %s", failed, err)
		}
		t.Logf("\t%s\tShould have a valid chain after mining.", success)
	}
}

func Test_MineBlockSize(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	miner := newWallet(t)

	var trans []database.Tx
	for range 25 {
		trans = append(trans, database.NewCoinbaseTx(newWallet(t).account, 1, clk.Now()))
	}
	st.UpsertMempool(trans)

	blocks, err := st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	if len(blocks) != 3 {
		t.Fatalf("Should mine 3 blocks for 25 transactions, got %d.", len(blocks))
	}

	for i, exp := range []int{10, 10, 5} {
		if len(blocks[i].Trans) != exp {
			t.Fatalf("Should have %d transactions in block %d, got %d.", exp, i, len(blocks[i].Trans))
		}
		if blocks[i].Index != uint64(i+1) {
			t.Fatalf("Should have index %d for block %d, got %d.", i+1, i, blocks[i].Index)
		}
	}

	// The first pending transaction goes in the first block.
	if blocks[0].Trans[0].Hash != trans[0].Hash {
		t.Fatalf("Should mine the transactions in mempool order.")
	}

	if pending := st.RetrieveMempool(); len(pending) != 1 || !pending[0].IsCoinbase() {
		t.Fatalf("Should have only the miner reward pending: %v", pending)
	}
}

func Test_MineCancel(t *testing.T) {
	clk := newClock()

	g := testGenesis()
	g.Difficulty = 64

	st, err := state.New(state.Config{Genesis: g, Now: clk.Now})
	ifErrFailNow(t, err)

	st.UpsertMempool([]database.Tx{database.NewCoinbaseTx(newWallet(t).account, 1, clk.Now())})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := st.Mine(ctx, newWallet(t).account); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Should get the context error from a cancelled mining operation: %v", err)
	}

	if st.ChainLength() != 1 || len(st.RetrieveMempool()) != 1 {
		t.Fatalf("Should leave the chain and mempool unchanged when cancelled.")
	}
}

func Test_RewardsWithinOneSecond(t *testing.T) {
	now := time.Date(2021, time.March, 4, 10, 0, 0, 0, time.UTC)

	st, err := state.New(state.Config{
		Genesis: testGenesis(),
		Now:     func() time.Time { return now },
	})
	ifErrFailNow(t, err)

	miner := newWallet(t)
	st.UpsertMempool([]database.Tx{database.NewCoinbaseTx(newWallet(t).account, 100, now)})

	t.Log("Given the need to reward every round mined within the same second.")
	{
		for round := 1; round <= 3; round++ {
			if _, err := st.Mine(context.Background(), miner.account); err != nil {
				t.Fatalf("\t%s\tShould mine round %d: %s", failed, round, err)
			}
		}
		t.Logf("\t%s\tShould mine three rounds.", success)

		if st.ChainLength() != 4 {
			t.Fatalf("\t%s\tShould have four blocks in the chain: %d", failed, st.ChainLength())
		}
		t.Logf("\t%s\tShould have four blocks in the chain.", success)

		if bal := st.Balance(miner.account); bal != 200 {
			t.Fatalf("\t%s\tShould credit the miner with two rewards: %d", failed, bal)
		}
		t.Logf("\t%s\tShould credit the miner with two rewards.", success)

		if len(st.RetrieveMempool()) != 1 {
			t.Fatalf("\t%s\tShould leave the third reward pending: %d", failed, len(st.RetrieveMempool()))
		}
		t.Logf("\t%s\tShould leave the third reward pending.", success)
	}
}

func Test_DoubleSpend(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	c := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)

	t.Log("Given the need to reject spending more than the balance.")
	{
		_, err := st.SubmitTransaction(a.pk, a.account, b.account, 101)
		if te := state.GetTxError(err); te == nil || te.Reason != state.ReasonInsufficientFunds {
			t.Fatalf("\t%s\tShould reject spending the balance plus one: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject spending the balance plus one.", success)

		if _, err := st.SubmitTransaction(a.pk, a.account, b.account, 100); err != nil {
			t.Fatalf("\t%s\tShould accept spending exactly the balance: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept spending exactly the balance.", success)

		// Pending transactions are only checked against the mined balance.
		if _, err := st.SubmitTransaction(a.pk, a.account, c.account, 100); err != nil {
			t.Fatalf("\t%s\tShould accept a second pending spend of the same balance: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept a second pending spend of the same balance.", success)

		if _, err := st.Mine(context.Background(), miner.account); err != nil {
			t.Fatalf("\t%s\tShould be able to mine: %s", failed, err)
		}

		if st.Balance(a.account) != 0 || st.Balance(b.account) != 100 || st.Balance(c.account) != 0 {
			t.Logf("\t%s\tgot: a[%d] b[%d] c[%d]", failed, st.Balance(a.account), st.Balance(b.account), st.Balance(c.account))
			t.Fatalf("\t%s\tShould only mine the first spend.", failed)
		}
		t.Logf("\t%s\tShould only mine the first spend.", success)

		for _, tx := range st.RetrieveMempool() {
			if tx.Receiver == c.account {
				t.Fatalf("\t%s\tShould drop the second spend from the mempool.", failed)
			}
		}
		t.Logf("\t%s\tShould drop the second spend from the mempool.", success)
	}
}

func Test_PoolDedup(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)
	before := len(st.RetrieveMempool())

	tx, err := database.NewTx(a.account, b.account, 10, clk.Now()).Sign(a.pk)
	ifErrFailNow(t, err)

	ifErrFailNow(t, st.SubmitSignedTransaction(tx))
	ifErrFailNow(t, st.SubmitSignedTransaction(tx))

	if got := len(st.RetrieveMempool()); got != before+1 {
		t.Fatalf("Should have exactly one entry for identical transactions, got %d.", got-before)
	}

	if added := st.UpsertMempool([]database.Tx{tx, tx}); added != 0 {
		t.Fatalf("Should not add transactions already pending, added %d.", added)
	}
}

func Test_SubmitRejects(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)

	sign := func(tx database.Tx, pk *ecdsa.PrivateKey) database.Tx {
		signed, err := tx.Sign(pk)
		ifErrFailNow(t, err)
		return signed
	}

	tampered := sign(database.NewTx(a.account, b.account, 10, clk.Now()), a.pk)
	tampered.Amount = 20

	recomputed := tampered
	recomputed.Hash = recomputed.CalculateHash()

	type table struct {
		name   string
		tx     database.Tx
		reason string
	}

	tt := []table{
		{name: "self", tx: sign(database.NewTx(a.account, a.account, 10, clk.Now()), a.pk), reason: state.ReasonSelfTransfer},
		{name: "wrongkey", tx: sign(database.NewTx(a.account, b.account, 10, clk.Now()), b.pk), reason: state.ReasonBadSignature},
		{name: "unsigned", tx: database.NewTx(a.account, b.account, 10, clk.Now()), reason: state.ReasonBadSignature},
		{name: "tampered", tx: tampered, reason: state.ReasonHashMismatch},
		{name: "recomputed", tx: recomputed, reason: state.ReasonBadSignature},
		{name: "coinbase", tx: database.NewCoinbaseTx(a.account, 10, clk.Now()), reason: state.ReasonCoinbaseSubmit},
		{name: "receiver", tx: sign(database.NewTx(a.account, "bob", 10, clk.Now()), a.pk), reason: state.ReasonInvalidReceiver},
	}

	t.Log("Given the need to reject invalid transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				before := len(st.RetrieveMempool())

				err := st.SubmitSignedTransaction(tst.tx)
				te := state.GetTxError(err)
				if te == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get a transaction error: %v", failed, testID, err)
				}

				if te.Reason != tst.reason {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, te.Reason)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.reason)
					t.Fatalf("\t%s\tTest %d:\tShould get the specific reason.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the specific reason.", success, testID)

				if len(st.RetrieveMempool()) != before {
					t.Fatalf("\t%s\tTest %d:\tShould not change the mempool.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not change the mempool.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_SubmitAlreadyMined(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)

	tx, err := st.SubmitTransaction(a.pk, a.account, b.account, 10)
	ifErrFailNow(t, err)

	_, err = st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	err = st.SubmitSignedTransaction(tx)
	if te := state.GetTxError(err); te == nil || te.Reason != state.ReasonAlreadyMined {
		t.Fatalf("Should reject replaying a mined transaction: %v", err)
	}
}

func Test_ChainValidation(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)
	_, err := st.SubmitTransaction(a.pk, a.account, b.account, 10)
	ifErrFailNow(t, err)
	_, err = st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	g := st.RetrieveGenesis()

	// Block 2 holds the miner reward followed by the transfer from a to b.
	transfer := 1
	if st.RetrieveChain()[2].Trans[transfer].Sender != a.account {
		t.Fatalf("Should find the transfer in block 2.")
	}

	type table struct {
		name   string
		mutate func(t *testing.T, chain []database.Block) []database.Block
		reason string
	}

	tt := []table{
		{
			name:   "valid",
			mutate: func(t *testing.T, chain []database.Block) []database.Block { return chain },
		},
		{
			name:   "empty",
			mutate: func(t *testing.T, chain []database.Block) []database.Block { return nil },
		},
		{
			name: "link",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				chain[2].PrevHash = "0bad"
				ifErrFailNow(t, chain[2].POW(context.Background(), g.Difficulty, func(string, ...any) {}))
				return chain
			},
		},
		{
			name: "hash",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				chain[1].Nonce++
				return chain
			},
		},
		{
			name: "pow",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				for database.IsHashSolved(g.Difficulty, chain[2].Hash) {
					chain[2].Nonce++
					chain[2].Hash = chain[2].CalculateHash()
				}
				return chain
			},
		},
		{
			name: "signature",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				tx := &chain[2].Trans[transfer]
				tx.Amount = 5
				tx.Hash = tx.CalculateHash()
				remine(t, chain, 2, g.Difficulty)
				return chain
			},
			reason: state.ReasonBadSignature,
		},
		{
			name: "overspend",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				tx := &chain[2].Trans[transfer]
				tx.Amount = 1000
				tx.Hash = tx.CalculateHash()
				remine(t, chain, 2, g.Difficulty)
				return chain
			},
			reason: state.ReasonInsufficientFunds,
		},
		{
			name: "coinbase",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				tx := &chain[1].Trans[0]
				tx.Amount = g.MiningReward + 1
				tx.Hash = tx.CalculateHash()
				remine(t, chain, 1, g.Difficulty)
				return chain
			},
			reason: state.ReasonCoinbaseAmount,
		},
		{
			name: "staletxhash",
			mutate: func(t *testing.T, chain []database.Block) []database.Block {
				chain[1].Trans[0].Amount = 50
				return chain
			},
			reason: state.ReasonHashMismatch,
		},
	}

	t.Log("Given the need to validate whole chains.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				chain := tst.mutate(t, st.RetrieveChain())
				err := st.IsChainValid(chain)

				if tst.name == "valid" {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould accept the unmodified chain: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould accept the unmodified chain.", success, testID)
					return
				}

				if !errors.Is(err, state.ErrInvalidChain) {
					t.Fatalf("\t%s\tTest %d:\tShould reject the chain: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the chain: %s", success, testID, err)

				if tst.reason != "" {
					if te := state.GetTxError(err); te == nil || te.Reason != tst.reason {
						t.Fatalf("\t%s\tTest %d:\tShould reject for %q: %v", failed, testID, tst.reason, err)
					}
					t.Logf("\t%s\tTest %d:\tShould reject for the transaction reason.", success, testID)
				}

				if len(chain) == 0 {
					return
				}

				replaced, err := st.ReplaceChain(append(chain, database.Block{}))
				if replaced || err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould not replace the local chain with an invalid longer chain.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not replace the local chain with an invalid longer chain.", success, testID)
			}

			t.Run(tst.name, f)
		}

		if st.ChainLength() != 3 {
			t.Fatalf("\t%s\tShould leave the local chain unchanged.", failed)
		}
		t.Logf("\t%s\tShould leave the local chain unchanged.", success)
	}
}

func Test_ReplaceChain(t *testing.T) {
	clk := newClock()
	long := newState(t, clk)
	short := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, long, clk, a, miner)
	tx, err := long.SubmitTransaction(a.pk, a.account, b.account, 10)
	ifErrFailNow(t, err)

	// The short node learned about the transfer through gossip.
	short.UpsertMempool([]database.Tx{tx})

	_, err = long.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	t.Log("Given the need to adopt the longest valid chain.")
	{
		replaced, err := short.ReplaceChain(long.RetrieveChain())
		if err != nil || !replaced {
			t.Fatalf("\t%s\tShould replace a shorter chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould replace a shorter chain.", success)

		if short.RetrieveLatestBlock().Hash != long.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould have the same latest block.", failed)
		}
		t.Logf("\t%s\tShould have the same latest block.", success)

		if len(short.RetrieveMempool()) != 0 {
			t.Fatalf("\t%s\tShould prune transactions that are now mined.", failed)
		}
		t.Logf("\t%s\tShould prune transactions that are now mined.", success)

		replaced, err = long.ReplaceChain(long.RetrieveChain()[:2])
		if err != nil || replaced {
			t.Fatalf("\t%s\tShould keep the local chain for a shorter candidate: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep the local chain for a shorter candidate.", success)

		replaced, err = long.ReplaceChain(long.RetrieveChain())
		if err != nil || replaced {
			t.Fatalf("\t%s\tShould keep the local chain for an equal length candidate: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep the local chain for an equal length candidate.", success)
	}
}

func Test_TamperedLongerChain(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)
	_, err := st.SubmitTransaction(a.pk, a.account, b.account, 10)
	ifErrFailNow(t, err)
	_, err = st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	g := st.RetrieveGenesis()
	local := st.RetrieveLatestBlock().Hash

	chain := st.RetrieveChain()
	chain = append(chain, database.NewBlock(uint64(len(chain)), "", []database.Tx{database.NewCoinbaseTx(miner.account, 1, clk.Now())}, clk.Now()))

	for i, tx := range chain[2].Trans {
		if tx.Sender == a.account {
			chain[2].Trans[i].Amount = 50
			chain[2].Trans[i].Hash = chain[2].Trans[i].CalculateHash()
		}
	}
	remine(t, chain, 2, g.Difficulty)

	replaced, err := st.ReplaceChain(chain)
	if replaced || !errors.Is(err, state.ErrInvalidChain) {
		t.Fatalf("Should reject a longer chain with a tampered amount: %v", err)
	}

	if st.RetrieveLatestBlock().Hash != local || st.ChainLength() != 3 {
		t.Fatalf("Should leave the local chain unchanged.")
	}
}

func Test_IsTransactionValidPosition(t *testing.T) {
	clk := newClock()
	st := newState(t, clk)

	a := newWallet(t)
	b := newWallet(t)
	miner := newWallet(t)

	fund(t, st, clk, a, miner)
	tx, err := st.SubmitTransaction(a.pk, a.account, b.account, 100)
	ifErrFailNow(t, err)
	_, err = st.Mine(context.Background(), miner.account)
	ifErrFailNow(t, err)

	// Inside the chain the transfer is checked against the balance before it.
	if err := st.IsTransactionValid(tx, st.RetrieveChain()); err != nil {
		t.Fatalf("Should validate a mined transaction at its position: %s", err)
	}

	// Outside the chain the whole chain is spent already.
	again, err := database.NewTx(a.account, b.account, 100, clk.Now()).Sign(a.pk)
	ifErrFailNow(t, err)

	if te := state.GetTxError(st.IsTransactionValid(again, st.RetrieveChain())); te == nil || te.Reason != state.ReasonInsufficientFunds {
		t.Fatalf("Should reject a new transaction against the full chain balance.")
	}
}

func Test_JSONAndSnapshot(t *testing.T) {
	clk := newClock()
	strg := memory.New()

	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Genesis: testGenesis(),
		Storage: strg,
		Now:     clk.Now,
	})
	ifErrFailNow(t, err)

	a := newWallet(t)
	miner := newWallet(t)
	fund(t, st, clk, a, miner)

	t.Log("Given the need to serialize and reload the chain.")
	{
		data, err := st.ToJSON()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to encode the chain: %s", failed, err)
		}

		other := newState(t, clk)
		if err := other.FromJSON(data); err != nil {
			t.Fatalf("\t%s\tShould be able to load the chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the chain.", success)

		exp := st.RetrieveChain()
		got := other.RetrieveChain()
		if len(got) != len(exp) {
			t.Fatalf("\t%s\tShould get back the same number of blocks.", failed)
		}
		for i := range exp {
			if got[i].Hash != exp[i].Hash || got[i].Index != exp[i].Index || got[i].PrevHash != exp[i].PrevHash {
				t.Fatalf("\t%s\tShould get back the same block %d.", failed, i)
			}
		}
		t.Logf("\t%s\tShould get back the same chain.", success)

		if err := other.FromJSON([]byte(`{"chain":[]}`)); err == nil {
			t.Fatalf("\t%s\tShould reject an empty chain.", failed)
		}
		t.Logf("\t%s\tShould reject an empty chain.", success)

		ifErrFailNow(t, st.Shutdown())

		if strg.Writes() != 1 {
			t.Fatalf("\t%s\tShould write a snapshot on shutdown.", failed)
		}
		t.Logf("\t%s\tShould write a snapshot on shutdown.", success)

		reloaded, err := state.New(state.Config{Genesis: testGenesis(), Storage: strg, Now: clk.Now})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to start from the snapshot: %s", failed, err)
		}

		if reloaded.RetrieveLatestBlock().Hash != st.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould start from the snapshot chain.", failed)
		}
		t.Logf("\t%s\tShould start from the snapshot chain.", success)
	}
}
