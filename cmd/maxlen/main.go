// maxlen prints the length, in characters, of the longest text in a label
// table. Only the number is printed so scripts can capture it.
//
// Usage:
//
//	maxlen <labels_csv>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gardar/ocrtrain/pkg/labels"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: maxlen <labels_csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	n, err := labels.MaxTextLength(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(n)
}
