// Package goid extracts the running goroutine's numeric identity.
//
// Go deliberately exposes no official goroutine-local-storage API, and no
// repository in the retrieval pack implements one (a search for an
// ecosystem library doing this inside the pack came up empty), so this is
// a standard-library-only component: it parses the "goroutine NNN [...]:"
// header that runtime.Stack always writes first. This is the conventional
// technique every unofficial "goroutine id" library on the ecosystem uses
// in the absence of a blessed API; hand-rolling the dozen lines here avoids
// pulling in an unvetted dependency for something this small and
// self-contained.
//
// thread.Current/thread.CurrentID and every thread-local-storage operation
// in the thread package are built on top of this.
package goid

import (
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's id. It is stable for the
// lifetime of the goroutine and is never reused while that goroutine is
// alive, which is all this module requires of it.
func Current() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseHeader(buf[:n])
}

func parseHeader(line []byte) int64 {
	const prefix = "goroutine "
	if len(line) <= len(prefix) || string(line[:len(prefix)]) != prefix {
		return -1
	}
	line = line[len(prefix):]
	end := 0
	for end < len(line) && line[end] >= '0' && line[end] <= '9' {
		end++
	}
	id, err := strconv.ParseInt(string(line[:end]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
