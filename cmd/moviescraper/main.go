// The main package for the moviescraper executable.
package main

import (
	"github.com/JakeFAU/movie-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
