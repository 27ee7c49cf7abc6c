// Package ui connects the dashboard to the terminal.
//
// Terminal runs a Bubble Tea program around a thin bridge model. The program
// owns raw mode, the alternate screen and input decoding; it never touches
// dashboard state. Frames are produced by the dispatch loop and pushed in
// with Draw, and decoded input (keys and resizes) is forwarded on a buffered
// channel.
//
// Listener drains that channel and turns each message into an action on the
// shared queue. Both are created fresh after every suspend or editor session:
// the old pair is stopped and joined, and new ones are started in their place.
package ui
