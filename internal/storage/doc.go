// Package storage persists runs on disk. Every run gets a directory named
// by a random UUID holding metadata.json and trajectory.csv; Index keeps a
// SQLite catalogue of the same runs for fast listing.
package storage
