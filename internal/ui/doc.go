// Package ui contains the Bubble Tea program that hosts the tabs.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses resolve through the keymap into actions and go to the
//     dispatcher. While the palette is open keys edit its query instead.
//   - Terminal output is pulled one batch at a time from the session
//     synchronizer. A batch is applied in handleOutputMsg, the frame is drawn,
//     and renderedMsg finishes the batch before the next one is requested, so
//     batches are applied strictly in order and never concurrently with an
//     action.
//   - Cell metrics are measured off the loop through the command bus and the
//     backend watcher; window size changes and metrics both feed the resize
//     negotiator, which resizes every terminal once metrics are known.
//
// State ownership:
//   - dispatch.AppState owns the session registry and palette visibility.
//     Only Update touches it.
//   - The palette query and selection live in palette.Palette; the text
//     input widget only edits the query string.
package ui
