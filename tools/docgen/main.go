// Package main writes the shopctl command reference as markdown.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/shopkeeper/cmd/shopctl/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "directory the markdown pages are written to")
	flag.Parse()

	if err := os.MkdirAll(*output, 0o750); err != nil {
		log.Fatalf("creating %s: %v", *output, err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := doc.GenMarkdownTree(root, *output); err != nil {
		log.Fatalf("writing shopctl reference: %v", err)
	}

	fmt.Printf("shopctl reference written to %s/\n", *output)
}
