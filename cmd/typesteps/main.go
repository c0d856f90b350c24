// Package main is the entry point for typesteps. Without a subcommand it runs
// the terminal dashboard; subcommands cover ingestion and data management.
package main

func main() {
	Execute()
}
