// Package cmd contains wallet app
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/puffin/business/web/errs"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

const (
	walletExtension = ".json"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "wallet", "Name of the wallet file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with wallet files.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:           "wallet",
	Short:         "A simple PuffinCoin wallet",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func getWalletPath() string {
	name := accountName
	if !strings.HasSuffix(name, walletExtension) {
		name += walletExtension
	}

	return filepath.Join(accountPath, name)
}

// =============================================================================

var client = http.Client{Timeout: 10 * time.Second}

// call performs a request against the node's operator api and decodes the
// response. Failures reported by the node are returned with their reason.
func call(method string, path string, dataSend any, dataRecv any) error {
	var body bytes.Buffer
	if dataSend != nil {
		if err := json.NewEncoder(&body).Encode(dataSend); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(url, "/")+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("status[%d]", resp.StatusCode)
		}
		if er.Reason != "" {
			return fmt.Errorf("status[%d]: %s: %s", resp.StatusCode, er.Error, er.Reason)
		}
		return fmt.Errorf("status[%d]: %s", resp.StatusCode, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(dataRecv)
}
