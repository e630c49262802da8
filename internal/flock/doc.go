// Package flock provides advisory file locks for the certificate store.
//
// Exclusive and Unlock are thin non-blocking primitives. Acquire layers a
// retry loop with a deadline and context cancellation on top:
//
//	lock, err := flock.Acquire(ctx, filepath.Join(dir, ".store.lock"), 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer lock.Release()
package flock
