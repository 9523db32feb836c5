package emit

import "golang.org/x/tools/imports"

// goimportsFormat is the default Formatter: gofmt formatting plus pruning
// of carried-over imports the generated body does not use.
func goimportsFormat(name string, src []byte) ([]byte, error) {
	return imports.Process(name, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
}
