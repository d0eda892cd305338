//go:build !linux

package platform

import "os"

func adviseSequential(_ *os.File) {}
