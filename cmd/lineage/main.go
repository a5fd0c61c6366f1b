// Package main is the lineage CLI entry point.
package main

import "github.com/mesh-intelligence/lineage/internal/cli"

func main() {
	cli.Execute()
}
