// Command gensecret prints a random value suitable for JWT_SECRET.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const defaultBytes = 48

func generate(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("byte count must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func main() {
	n := pflag.IntP("bytes", "n", defaultBytes, "number of random bytes")
	env := pflag.Bool("env", false, "print as a JWT_SECRET= line")
	pflag.Parse()

	secret, err := generate(rand.Reader, *n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gensecret:", err)
		os.Exit(1)
	}
	if *env {
		fmt.Printf("JWT_SECRET=%s\n", secret)
		return
	}
	fmt.Println(secret)
}
