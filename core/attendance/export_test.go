package attendance

import "time"

// SetNowFunc overrides the package clock for tests; the returned func restores it.
func SetNowFunc(f func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = f
	return func() { nowFunc = orig }
}
