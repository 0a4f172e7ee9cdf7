package vdom

import "strings"

// On creates an EventHandler for an event name. Both "click" and "onclick"
// are accepted; the prop key is always the "on"-prefixed lower-case form.
func On(name string, handler any) EventHandler {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "on") {
		name = "on" + name
	}
	return EventHandler{Event: name, Handler: handler}
}

// OnClick handles click events.
func OnClick(handler any) EventHandler { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return On("dblclick", handler) }

// OnInput handles input events.
func OnInput(handler any) EventHandler { return On("input", handler) }

// OnChange handles change events.
func OnChange(handler any) EventHandler { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return On("submit", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return On("keydown", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return On("blur", handler) }
