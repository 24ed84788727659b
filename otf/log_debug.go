//go:build otfdebug

package otf

import "log"

func warnf(format string, args ...any) {
	log.Printf("otf: "+format, args...)
}
