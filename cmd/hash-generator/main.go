// Command hash-generator prints bcrypt hashes of client secrets, for
// inserting credentials by hand or into test fixtures.
//
// Usage:
//
//	hash-generator [-cost 10] secret...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cleanapi/cleanapi/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost n] secret...")
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)
	failed := false
	for _, secret := range flag.Args() {
		hash, err := hasher.Hash(secret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing secret: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}
	if failed {
		os.Exit(1)
	}
}
