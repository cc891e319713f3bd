// Package locker provides drain guards: a drain may only run while its
// guard is held, and a guard that cannot be acquired means another drain
// is in flight.
package locker

type Locker interface {
	TryLock() (bool, error)
	Unlock() (bool, error)
}
