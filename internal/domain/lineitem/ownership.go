// internal/domain/lineitem/ownership.go
package lineitem

// FilterOwned enforces owner scoping on a remote response before it can
// reach the cache. If no record in a non-empty response carries an owner
// field at all, the whole response is withheld and an UnscopedDataError is
// returned: rendering another user's data is worse than rendering nothing.
// Otherwise records whose owner does not match are dropped, and the dropped
// count is reported alongside the surviving set as a non-fatal warning.
func FilterOwned(records []RemoteRecord, ownerRef string) ([]RemoteRecord, int, error) {
	if len(records) == 0 {
		return records, 0, nil
	}

	anyScoped := false
	for _, rec := range records {
		if rec.OwnerRef != nil {
			anyScoped = true
			break
		}
	}
	if !anyScoped {
		return nil, 0, &UnscopedDataError{Records: len(records)}
	}

	kept := make([]RemoteRecord, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if rec.OwnerRef != nil && *rec.OwnerRef == ownerRef {
			kept = append(kept, rec)
		} else {
			dropped++
		}
	}
	return kept, dropped, nil
}
