// Package notification reports fatal startup problems to a user who may not
// be watching a terminal.
package notification

import (
	"fmt"
	"log"
	"os"
)

// ShowBlockingError logs the problem and shows it in a modal dialog where
// the platform has one. It returns once the user has dismissed it.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	if err := showDialog(title, message); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	}
}
