// Package inplace provides a translate-in-place overlay engine for HTML trees.
//
// Inplace takes anchor elements of a parsed page, dispatches their text or
// markup to a translation backend through an out-of-process relay, and
// commits the translated result into a sibling element right after the
// anchor, leaving the original content untouched.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/ZaguanLabs/inplace"
//	    "github.com/ZaguanLabs/inplace/relay"
//	)
//
//	func main() {
//	    // Create an in-process relay with the markup-preserving backend
//	    google, err := relay.NewGoogleBackend(relay.GoogleConfig{APIKey: "your-api-key"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer google.Close()
//	    h := relay.NewHandler(relay.WithBackend(inplace.ServiceGoogle, google))
//
//	    // Create the overlay
//	    o := inplace.New(relay.NewLocalChannel(h))
//
//	    // Translate a page
//	    result, err := o.TranslateDocument(context.Background(), "<p>Hello</p>", "p", inplace.ServiceGoogle, "")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content) // <p rs-translated="1">Hello</p><p ...>你好</p>
//	}
package inplace
