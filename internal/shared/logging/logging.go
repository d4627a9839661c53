package logging

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
)

func init() {
	SetOutput(os.Stdout, os.Stderr)
}

// SetOutput redirects the leveled loggers. Info and Warn share out, Error goes to errOut.
func SetOutput(out, errOut io.Writer) {
	Info = log.New(out, color.GreenString("[INFO] "), log.LstdFlags|log.Lshortfile)
	Warn = log.New(out, color.YellowString("[WARN] "), log.LstdFlags|log.Lshortfile)
	Error = log.New(errOut, color.RedString("[ERROR] "), log.LstdFlags|log.Lshortfile)
}
