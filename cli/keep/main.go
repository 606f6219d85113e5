package main

import (
	"os"

	keepcmder "github.com/mnemosyneco/keep/cmd/keep"
)

func main() {
	cmd := keepcmder.NewKeepCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
