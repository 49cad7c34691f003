// Package pugtl translates Spanish display text embedded in Pug templates into
// English, rewriting the template in place.
//
// Pugtl scans templates line by line, separating tags, attribute lists,
// interpolation placeholders and quoted literals from the human-readable text,
// and only hands the text to a translation backend. Everything else is copied
// through byte for byte.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/pugtl"
//	    "github.com/ZaguanLabs/pugtl/cache"
//	    "github.com/ZaguanLabs/pugtl/detector"
//	    "github.com/ZaguanLabs/pugtl/processor"
//	    "github.com/ZaguanLabs/pugtl/provider"
//	)
//
//	func main() {
//	    t := pugtl.NewTranslator(provider.NewGoogleProvider(provider.GoogleConfig{}),
//	        pugtl.WithCache(cache.NewInMemoryCache(0)),
//	        pugtl.WithHeuristic(pugtl.NewHeuristic(detector.NewLingua())),
//	        pugtl.WithProcessor(processor.NewPugProcessor()),
//	    )
//
//	    result, err := t.Process(context.Background(), "p Hola mundo\n", "pug")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(result.Content) // p Hello world
//	}
package pugtl
