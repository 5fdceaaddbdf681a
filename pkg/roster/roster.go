// Package roster generates the fixed pool of drivers used for one assignment run.
package roster

import (
	"fmt"
	"strconv"
	"strings"
)

const namePrefix = "Driver "

// Driver is a named member of the pool. Number is its 1-based pool position.
type Driver struct {
	Name   string
	Number int
}

func (d Driver) String() string {
	return d.Name
}

// NewDriver returns the driver occupying position n of a generated pool
func NewDriver(n int) Driver {
	return Driver{Name: fmt.Sprintf("%s%d", namePrefix, n), Number: n}
}

// GeneratePool returns n drivers named "Driver 1" .. "Driver n" in pool order.
// n <= 0 yields an empty pool.
func GeneratePool(n int) []Driver {
	if n <= 0 {
		return []Driver{}
	}

	drivers := make([]Driver, 0, n)
	for i := 1; i <= n; i++ {
		drivers = append(drivers, NewDriver(i))
	}
	return drivers
}

// Less orders driver names naturally, so "Driver 2" sorts before "Driver 10".
// Names that are not generated by this package fall back to lexical order.
func Less(a, b string) bool {
	na, okA := number(a)
	nb, okB := number(b)
	switch {
	case okA && okB:
		return na < nb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func number(name string) (int, bool) {
	rest, found := strings.CutPrefix(name, namePrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
