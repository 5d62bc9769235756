package atomic

// IsLockFree reports whether the selected backend makes progress without
// blocking on a mutex. It is true for every backend except the emulated
// one (spec.md §4.1).
func IsLockFree() bool { return lockFree }
