package checkout

// CheckEntry guards entry into checkout. Unauthenticated customers never get a
// session; the caller decides where to send them.
func CheckEntry(signedIn bool) error {
	if !signedIn {
		return ErrNotAuthenticated
	}
	return nil
}
