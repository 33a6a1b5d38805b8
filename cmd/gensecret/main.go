package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const SecretKeyBytesLen = 32

func main() {
	if err := writeSecrets(os.Stdout, rand.Reader); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

// Print a pair of distinct secrets ready to paste into .env
func writeSecrets(w io.Writer, random io.Reader) error {
	access, err := secret(random)
	if err != nil {
		return err
	}

	refresh := access
	for refresh == access {
		if refresh, err = secret(random); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "ACCESS_TOKEN_SECRET=%s\nREFRESH_TOKEN_SECRET=%s\n", access, refresh)
	return err
}

func secret(random io.Reader) (string, error) {
	b := make([]byte, SecretKeyBytesLen)
	if _, err := io.ReadFull(random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
