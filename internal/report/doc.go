// Package report renders run results for people and for files: a styled
// console reporter, a progress observer, and CSV/JSON writers for
// trajectories.
package report
