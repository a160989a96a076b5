package main

import (
	"crashlog"
	"crashlog/internal/demo/cmd"
)

func main() {
	defer crashlog.RecoverPanic()

	cmd.Execute()
}
