package main

import "github.com/vaultd/chunkstore/cmd/chunkstore/cmd"

func main() {
	cmd.Execute()
}
