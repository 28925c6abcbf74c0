package main

import "github.com/goplus/ccpick/cmd/ccpick/internal"

func main() {
	internal.Execute()
}
