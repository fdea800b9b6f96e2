package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction and submit it to the node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiving wallet.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	if amount == 0 {
		return errors.New("amount must be greater than zero")
	}

	receiver, err := database.ToAccountID(to)
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}

	w, err := wallet.Load(getWalletPath())
	if err != nil {
		return err
	}

	privateKey, err := w.ECDSA()
	if err != nil {
		return err
	}

	// The transaction is signed here so the private key never leaves
	// this machine.
	tx, err := database.NewTx(w.Account(), receiver, amount, time.Now()).Sign(privateKey)
	if err != nil {
		return err
	}

	var accepted database.Tx
	if err := call(http.MethodPost, "/v1/tx/submit", tx, &accepted); err != nil {
		return err
	}

	fmt.Println("Submitted:", accepted.Hash)

	return nil
}
