//go:build debug

package assert

const Enabled = true
