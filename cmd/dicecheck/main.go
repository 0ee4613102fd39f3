// dicecheck looks for bias in the dice-to-bits conversion.
//
// Test 1 draws many bit strings from a generator and checks every bit
// position for a 50/50 split. Test 2 runs every possible roll sequence for
// small widths through the extractor and requires exactly equal counts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
