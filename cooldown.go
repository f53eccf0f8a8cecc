package auth

import "time"

// CooldownActive reports whether lastAttempt still falls inside the
// cooldown window. The window is a time.ParseDuration string so it can
// come straight from configuration, e.g. "24h".
func CooldownActive(lastAttempt time.Time, window string) (bool, error) {
	d, err := time.ParseDuration(window)
	if err != nil {
		return false, err
	}

	return time.Since(lastAttempt) < d, nil
}

// CooldownExpired reports whether the cooldown window has elapsed since
// lastAttempt, meaning the attempt counter can reset.
func CooldownExpired(lastAttempt time.Time, window string) (bool, error) {
	active, err := CooldownActive(lastAttempt, window)
	if err != nil {
		return false, err
	}

	return !active, nil
}
