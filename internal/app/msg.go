package app

import "time"

// clockMsg refreshes the clock in the header.
type clockMsg time.Time

// quitDialog identifies the quit confirmation.
const quitDialog = "quit"
