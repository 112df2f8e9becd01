package main

import (
	"log"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.New(os.Stderr, "babycare ", log.LstdFlags).Fatal(err)
	}
}
