package port

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, stored string) bool
	// IsHashed reports whether stored is already in the current hash format
	IsHashed(stored string) bool
}
