// Command vibescout indexes a codebase into a hybrid vector+keyword search
// store and answers semantic search and chat queries over it.
package main

import "github.com/sevenseconds/vibescout/internal/cli"

func main() {
	cli.Execute()
}
