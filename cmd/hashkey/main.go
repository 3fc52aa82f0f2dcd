// Command hashkey prints the argon2id hash to use as ADMIN_KEY_HASH.
//
//	go run ./cmd/hashkey <admin-key>
//
// With no argument the key is read from the first line of stdin. The output is
// single quoted so godotenv does not expand the "$" separators.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AnshRaj112/luna-backend/pkg/utils"
)

func main() {
	key := ""
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal("Failed to read admin key from stdin:", err)
		}
		key = strings.TrimRight(line, "\r\n")
	}
	if len(key) < 12 {
		log.Fatal("Admin key must be at least 12 characters")
	}

	hash, err := utils.HashSecret(key)
	if err != nil {
		log.Fatal("Failed to hash admin key:", err)
	}
	fmt.Printf("ADMIN_KEY_HASH='%s'\n", hash)
}
