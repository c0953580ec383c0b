package main

import "github.com/tpterovtt/betrusted-soc/cmd/efusectl/cmd"

func main() {
	cmd.Execute()
}
