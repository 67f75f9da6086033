//go:build unix && !linux

package sigstream

// Without a kernel signal descriptor the self-pipe backend is the default,
// so forcing it changes nothing.
func newPlatformNotifier(bool) (notifier, error) {
	return newPipeNotifier()
}
