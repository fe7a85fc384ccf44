package main

import "github.com/mselser95/polymarket-mirror/cmd"

func main() {
	cmd.Execute()
}
