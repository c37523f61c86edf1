//go:build nogpu

package main

import "github.com/gogpu/bloom"

func newAccelerator() bloom.Accelerator {
	return nil
}
