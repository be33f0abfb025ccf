// Package tui is the bubbletea watch view: it shows step progress, the
// current beam sizes with their relative changes and sparkline histories
// while a run proceeds.
package tui
