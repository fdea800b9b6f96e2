package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var force bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new wallet key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing wallet.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getWalletPath()

	if _, err := os.Stat(path); !force && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("wallet %q already exists, use --force to replace it", path)
	}

	w, err := wallet.Generate()
	if err != nil {
		return err
	}

	if err := w.Save(path); err != nil {
		return err
	}

	fmt.Println("Wallet:", path)
	fmt.Println("Address:", w.Account())

	return nil
}
