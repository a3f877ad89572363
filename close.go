package desigo

// Close releases resources held by the Archive, including its store and
// any separately configured template store.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.tplStore != nil && a.tplStore != a.store {
		if err := a.tplStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
