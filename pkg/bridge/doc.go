// Package bridge runs the poll loop that turns glucose readings into
// chatbox messages.
//
// Each cycle fetches the latest reading, normalizes it, and sends
// "BG {value} {glyph}" when the value moved by at least MinDelta since the
// last message that was actually delivered. A failing cycle is logged and
// recorded; the loop keeps running until its context is cancelled.
package bridge
