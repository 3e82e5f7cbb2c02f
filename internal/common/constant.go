package common

// MiB is one mebibyte.
const MiB = 1 << 20

// DefaultMaxUploadSize is the upload ceiling used when none is configured.
const DefaultMaxUploadSize int64 = 100 * MiB
