// Command token issues a bearer token for the crawl API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/raushankrgupta/price-list-crawler/config"
	"github.com/raushankrgupta/price-list-crawler/utils"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", utils.TokenTTL, "token lifetime")
	flag.Parse()

	cfg, _ := config.Load()
	token, err := utils.GenerateToken(cfg.JWTSecret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
