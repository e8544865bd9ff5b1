package main

import "github.com/reckon-ledger/reckon/internal/cli"

func main() {
	cli.Execute()
}
