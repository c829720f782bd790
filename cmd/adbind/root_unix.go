//go:build unix

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// requireRoot fails unless the effective user is root; dsconfigad refuses
// to change the binding otherwise.
func requireRoot() error {
	if unix.Geteuid() != 0 {
		return fmt.Errorf("apply in real mode must run as root (try sudo)")
	}
	return nil
}
