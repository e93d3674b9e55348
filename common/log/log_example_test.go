package log_test

import (
	"fmt"

	elog "github.com/erieironllc/erieiron-public-common/common/log"
)

func ExampleParseLevel() {
	level, err := elog.ParseLevel("warning")

	fmt.Println(err == nil)
	fmt.Println(level.String())

	// Output:
	// true
	// warn
}
