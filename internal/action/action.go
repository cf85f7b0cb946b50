package action

import "fmt"

// Kind enumerates every request the dispatcher understands.
type Kind int

const (
	NoAction Kind = iota
	Write
	NewTab
	CloseTab
	CloseTabAt
	CloseOtherTabs
	Quit
	OpenSettings
	OpenPluginMenu
	ToggleCommandPalette
	NextTab
	PreviousTab
	ClearBuffer
	CopyText
	PasteText
	ScrollUp
	ScrollDown
	ScrollUpPage
	ScrollDownPage
	ScrollToTop
	ScrollToBottom
	OpenDevTools
)

// Action is a single request for the dispatcher. Text is only meaningful for
// Write and Index only for CloseTabAt.
type Action struct {
	Kind  Kind
	Text  string
	Index int
}

var kindNames = map[Kind]string{
	NoAction:             "no-action",
	Write:                "write",
	NewTab:               "new-tab",
	CloseTab:             "close-tab",
	CloseTabAt:           "close-tab-at",
	CloseOtherTabs:       "close-other-tabs",
	Quit:                 "quit",
	OpenSettings:         "open-settings",
	OpenPluginMenu:       "open-plugin-menu",
	ToggleCommandPalette: "toggle-command-palette",
	NextTab:              "next-tab",
	PreviousTab:          "previous-tab",
	ClearBuffer:          "clear-buffer",
	CopyText:             "copy-text",
	PasteText:            "paste-text",
	ScrollUp:             "scroll-up",
	ScrollDown:           "scroll-down",
	ScrollUpPage:         "scroll-up-page",
	ScrollDownPage:       "scroll-down-page",
	ScrollToTop:          "scroll-to-top",
	ScrollToBottom:       "scroll-to-bottom",
	OpenDevTools:         "open-dev-tools",
}

var kindLabels = map[Kind]string{
	NoAction:             "No Action",
	Write:                "Write",
	NewTab:               "New Tab",
	CloseTab:             "Close Tab",
	CloseTabAt:           "Close Tab At",
	CloseOtherTabs:       "Close Other Tabs",
	Quit:                 "Quit",
	OpenSettings:         "Settings",
	OpenPluginMenu:       "Plugins",
	ToggleCommandPalette: "Command Palette",
	NextTab:              "Next Tab",
	PreviousTab:          "Previous Tab",
	ClearBuffer:          "Clear Buffer",
	CopyText:             "Copy",
	PasteText:            "Paste",
	ScrollUp:             "Scroll Up",
	ScrollDown:           "Scroll Down",
	ScrollUpPage:         "Scroll Up Page",
	ScrollDownPage:       "Scroll Down Page",
	ScrollToTop:          "Scroll To Top",
	ScrollToBottom:       "Scroll To Bottom",
	OpenDevTools:         "Open Dev Tools",
}

// String returns the stable identifier used in logs and keybinding tables.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Of builds a parameterless action.
func Of(kind Kind) Action {
	return Action{Kind: kind}
}

// WriteText builds a Write action carrying text for the focused session.
func WriteText(text string) Action {
	return Action{Kind: Write, Text: text}
}

// CloseAt builds a CloseTabAt action for the given tab index.
func CloseAt(index int) Action {
	return Action{Kind: CloseTabAt, Index: index}
}

// Label returns the human-readable name shown in the command palette.
func (a Action) Label() string {
	if label, ok := kindLabels[a.Kind]; ok {
		return label
	}
	return a.Kind.String()
}

func (a Action) String() string {
	switch a.Kind {
	case Write:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
	case CloseTabAt:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Index)
	default:
		return a.Kind.String()
	}
}

// Unimplemented reports whether the kind is part of the action set but has no
// effect in this build. Dispatching such an action is a recorded no-op.
func Unimplemented(kind Kind) bool {
	return kind == OpenDevTools
}

// PaletteCatalog lists the actions offered by the command palette, in display
// order. Actions that need an argument are excluded.
func PaletteCatalog() []Action {
	kinds := []Kind{
		NewTab,
		CloseTab,
		CloseOtherTabs,
		NextTab,
		PreviousTab,
		OpenSettings,
		OpenPluginMenu,
		CopyText,
		PasteText,
		ClearBuffer,
		ScrollToTop,
		ScrollToBottom,
		OpenDevTools,
		Quit,
	}
	out := make([]Action, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Of(k))
	}
	return out
}
