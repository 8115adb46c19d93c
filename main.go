package main

import (
	"fmt"
	"os"

	"go.dot.industries/bootvault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
