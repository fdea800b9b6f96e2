package main

import "github.com/ardanlabs/puffin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
