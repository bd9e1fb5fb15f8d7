package main

import "github.com/YJFKD/Food-delivery-simulator/internal/adapters/cli"

func main() {
	cli.Execute()
}
