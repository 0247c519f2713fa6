// Command jungine runs the Jungle engine's UCI-style line protocol over
// stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/notune/jungine/internal/protocol"
)

func main() {
	fmt.Fprintln(os.Stderr, "jungine - Jungle (Dou Shou Qi) engine")
	fmt.Fprintln(os.Stderr, "Type 'help' for available commands or 'uci' to enter UCI mode")
	fmt.Fprintln(os.Stderr)

	l := protocol.NewLoop(os.Stdout, os.Stderr)
	os.Exit(l.Run(os.Stdin))
}
