//go:build !otfdebug

package otf

func warnf(format string, args ...any) {}
