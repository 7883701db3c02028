package main

import (
	"fmt"
	"os"

	"vidops/internal/pkg/password"
)

// Generates the bcrypt hash for the auth.operator_hash config field.
//
//	go run scripts/hash_password.go <password>
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hash_password <password>")
		os.Exit(1)
	}

	hashed, err := password.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hashed)
}
