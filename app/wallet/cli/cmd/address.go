package cmd

import (
	"fmt"

	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address of the wallet",
	RunE:  addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) error {
	w, err := wallet.Load(getWalletPath())
	if err != nil {
		return err
	}

	fmt.Println(w.Account())

	return nil
}
