// Command fetchpipe compiles pipe queries into FetchXML markup.
package main

import "github.com/fetchpipe/fetchpipe/internal/cli"

func main() {
	cli.Execute()
}
