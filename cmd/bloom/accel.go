//go:build !nogpu

package main

import (
	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/gpu"
)

func newAccelerator() bloom.Accelerator {
	return gpu.New()
}
