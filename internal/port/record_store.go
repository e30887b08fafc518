package port

import "context"

// RecordStore is keyed CRUD over one flat file. Expected outcomes (missing
// file, unknown key, duplicate key) are reported through the boolean results;
// the error result is reserved for unexpected I/O failures.
type RecordStore[R any] interface {
	// FindAll returns every decodable record, or none when the file is missing
	FindAll(ctx context.Context) ([]R, error)

	// FindByKey returns the first record whose key matches
	FindByKey(ctx context.Context, key string) (R, bool, error)

	// Add appends r, returns false if the file is missing or the key is taken
	Add(ctx context.Context, r R) (bool, error)

	// Update replaces every record keyed oldKey with r, returns false if none matched
	Update(ctx context.Context, oldKey string, r R) (bool, error)

	// Delete removes every record keyed key, returns false if none matched
	Delete(ctx context.Context, key string) (bool, error)

	// Count returns the number of decodable records
	Count(ctx context.Context) (int, error)
}
