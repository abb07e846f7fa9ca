package main

import "github.com/ethanolivertroy/pacprune/cmd"

func main() {
	cmd.Execute()
}
