package main

import "github.com/finbot-ai/finbot/internal/cli"

func main() {
	cli.Execute()
}
