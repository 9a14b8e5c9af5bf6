package catalog

import "errors"

// ErrManifestInvalid is returned when the manifest file cannot be
// read or parsed, or lists a dataset with an empty file_id.
var ErrManifestInvalid = errors.New("manifest invalid")
