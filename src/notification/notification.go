// Package notification shows modal messages to the user. Outside Windows
// the messages go to the log.
package notification

import "log"

// ShowInfo displays an informational message and blocks until dismissed.
func ShowInfo(title, message string) {
	if err := messageBox(title, message, false); err != nil {
		log.Printf("%s: %s", title, message)
	}
}

// ShowBlockingError displays an error and blocks until dismissed.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
	_ = messageBox(title, message, true)
}
