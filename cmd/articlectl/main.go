// Command articlectl performs admin tasks directly against the database:
// creating the first admin, promoting an account and generating an
// ADMIN_TOKEN. It reads the same environment / .env as the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
