// Package checkpoint remembers the last actor run per profile.
//
// Each successful scrape stores the run and dataset IDs so a later
// invocation with --reuse-dataset can re-read the dataset and rebuild the
// CSV files without paying for a new run. Records live in one JSON file,
// replaced atomically on every write. When no path is configured the file
// goes to the per-user data directory:
//   - Linux: $XDG_DATA_HOME/igprofile or ~/.local/share/igprofile
//   - macOS: ~/Library/Application Support/igprofile
//   - Windows: %APPDATA%/igprofile
package checkpoint
