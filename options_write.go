package id3tag

// SaveOption configures behavior when writing a tag back to its file.
//
// Example:
//
//	err := tag.Update(
//	    id3tag.WithBackup(".bak"),
//	    id3tag.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for saving files.
type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Keep original modification time
}

// defaultSaveOptions returns the default configuration for saving.
func defaultSaveOptions() *saveOptions {
	return &saveOptions{
		backupSuffix:    "",
		validate:        false,
		preserveModTime: false,
	}
}

// WithBackup copies the original file before it is modified.
//
// The backup file has the suffix appended to the original filename, so
// WithBackup(".bak") copies "song.mp3" to "song.mp3.bak". An existing
// backup is overwritten.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the file after writing and compares every frame
// with the in-memory tag.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the original file modification time.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
