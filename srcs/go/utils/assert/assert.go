package assert

import (
	"fmt"
	"os"
	"runtime"
)

func fail(name string) {
	pc, fn, line, _ := runtime.Caller(2)
	fmt.Fprintf(os.Stderr, "%s failed at %v:%s:%d\n", name, pc, fn, line)
	os.Exit(1)
}

func OK(err error) {
	if err != nil {
		fail(`assertOK`)
	}
}

func True(ok bool) {
	if !ok {
		fail(`assertTrue`)
	}
}
