// catalog-lint validates achievement catalog JSON files without touching
// any database. Exit code 1 when any file has problems.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"vidverse/catalogfile"
)

func main() {
	patterns := os.Args[1:]
	if len(patterns) == 0 {
		patterns = []string{"./data/*.json"}
	}

	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			fmt.Println("error: bad pattern:", p)
			os.Exit(1)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Println("no catalog files found")
		return
	}

	exitCode := 0
	for _, f := range files {
		defs, err := catalogfile.Load(f)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			exitCode = 1
			continue
		}

		errs := catalogfile.Check(defs)
		for _, e := range errs {
			fmt.Printf("%s: %v\n", f, e)
		}
		if len(errs) > 0 {
			exitCode = 1
			continue
		}
		fmt.Printf("%s: OK (%d definitions)\n", f, len(defs))
	}
	os.Exit(exitCode)
}
