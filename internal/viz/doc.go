// Package viz draws trajectories: terminal line charts through asciigraph,
// PNG figures through gonum/plot, and the lipgloss themes shared by the
// console reporter and the watch TUI.
package viz
