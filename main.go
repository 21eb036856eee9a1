// file: main.go
// version: 2.0.0
// guid: 3b1d7e4f-0a6c-4e2b-9d8f-5c7a1e3b9f20

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/voicematch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
