// bip39mix mixes fresh entropy into an existing BIP39 mnemonic.
//
// Usage:
//
//	bip39mix mix                    Interactive: enter a mnemonic, mix OS entropy and dice
//	bip39mix encode <hex>           Entropy to mnemonic
//	bip39mix decode <words...>      Mnemonic to entropy
//	bip39mix dice --bits N <rolls>  Die rolls to bits
//	bip39mix check <words...>       Validate against the reference implementation
//	bip39mix config init            Write a default config file
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
