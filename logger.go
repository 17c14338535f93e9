package ticketrw

import "fmt"

// Logger receives watchdog reports. The interface is the smallest
// surface any logging stack can adapt to.
type Logger interface {
	Info(msg string)
	Error(err error)
}

type logger struct{}

func (*logger) Info(msg string) {
	fmt.Println(msg)
}

func (*logger) Error(err error) {
	fmt.Println(err.Error())
}

func newLogger() Logger {
	return &logger{}
}
