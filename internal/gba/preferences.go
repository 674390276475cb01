package gba

// PreferredSkinKey is the preference key holding the identifier of the
// skin the user last selected. It is scoped to the installation, not to a game.
const PreferredSkinKey = "preferred_skin_identifier"

// Preferences is lightweight app-wide key/value settings storage.
type Preferences interface {
	// Get returns the value for key and whether it was set.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
