package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	w, err := wallet.Load(getWalletPath())
	if err != nil {
		return err
	}

	fmt.Println("For Account:", w.Account())

	var bal balance
	if err := call(http.MethodGet, "/v1/balance/"+string(w.Account()), nil, &bal); err != nil {
		return err
	}

	fmt.Println(bal.Balance)

	return nil
}
