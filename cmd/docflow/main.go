// Command docflow links office documents and computes their flow.
package main

import "github.com/mesh-intelligence/docflow/internal/cli"

func main() {
	cli.Execute()
}
