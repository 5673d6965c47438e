// Package main provides the entry point for the domaincrawl CLI.
//
// domaincrawl crawls a list of seed sites, saves every same-domain page and
// resource below an output directory, and grows its own work list with
// discovered domains whose names match a keyword filter. Progress is kept in
// plain text lists so an interrupted run resumes where it stopped.
//
// Usage:
//
//	domaincrawl crawl
//	domaincrawl site https://www.example.com
//	domaincrawl status
//
// See --help for all available options.
package main

func main() {
	Execute()
}
