// Package translate formats user facing messages for the sap1 tools,
// using the best match of the user's preferred locales.
package translate

import (
	"io"
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	printer     *message.Printer
	printerOnce sync.Once
)

// Printer returns the message printer for the current user's locales.
func Printer() *message.Printer {
	printerOnce.Do(func() {
		locales, err := locale.GetLocales()
		if err != nil {
			log.Printf("sap1: locale: %v", err)
		}

		if len(locales) == 0 {
			locales = []string{"en-US"}
		}

		printer = message.NewPrinter(message.MatchLanguage(locales...))
	})

	return printer
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return Printer().Sprintf(key, args...)
}

// Fprintf translates an en-US Fprintf() format to a writer.
func Fprintf(w io.Writer, key message.Reference, args ...any) (n int, err error) {
	return Printer().Fprintf(w, key, args...)
}
