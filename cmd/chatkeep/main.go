// Command chatkeep stores and titles AI assistant chats and serves them
// over HTTP.
package main

import "github.com/mesh-intelligence/chatkeep/internal/cli"

func main() {
	cli.Execute()
}
