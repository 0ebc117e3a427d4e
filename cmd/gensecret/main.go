package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/nazh/votelink/internal/service/auth"
)

const SecretKeyBytesLen = 32

// With no arguments prints a random secret key (SECRET_KEY).
// With a single argument prints its bcrypt hash (OPERATOR_PASSWORD_HASH).
func main() {
	if len(os.Args) > 1 {
		hash, err := auth.DefaultHasher.Hash(os.Args[1])
		if err != nil {
			fmt.Printf("error while hashing password: %v", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
