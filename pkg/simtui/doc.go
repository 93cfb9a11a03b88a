// Package simtui is a live terminal dashboard for a running simulation:
// a bubbletea model ticking on a timer, bubbles/key for bindings, and
// lipgloss for the boxed layout.
package simtui
