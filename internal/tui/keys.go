package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/tuiread/internal/training"
)

type keyMap struct {
	Start         key.Binding
	Stuck         key.Binding
	Understood    key.Binding
	NotUnderstood key.Binding
	Confirm       key.Binding
	Next          key.Binding
	Prev          key.Binding
	Unlimited     key.Binding
	Verification  key.Binding
	Failed        key.Binding
	Reveal        key.Binding
	Jump          key.Binding
	Reset         key.Binding
	Quit          key.Binding
	Yes           key.Binding
	No            key.Binding
	Dismiss       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Stuck:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stuck")),
		Understood:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "understood")),
		NotUnderstood: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "not understood")),
		Confirm:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "confirm")),
		Next:          key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Prev:          key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous")),
		Unlimited:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "unlimited")),
		Verification:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify")),
		Failed:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "inner voice")),
		Reveal:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "original")),
		Jump:          key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "jump")),
		Reset:         key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Yes:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		No:            key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		Dismiss:       key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "ok")),
	}
}

// actionBindings pairs session actions with their keys, in help order.
func (k *keyMap) actionBindings() []struct {
	action  training.Action
	binding *key.Binding
} {
	return []struct {
		action  training.Action
		binding *key.Binding
	}{
		{training.ActStart, &k.Start},
		{training.ActMarkStuck, &k.Stuck},
		{training.ActMarkUnderstood, &k.Understood},
		{training.ActMarkNotUnderstood, &k.NotUnderstood},
		{training.ActConfirm, &k.Confirm},
		{training.ActPrev, &k.Prev},
		{training.ActNext, &k.Next},
		{training.ActUnlimited, &k.Unlimited},
		{training.ActVerification, &k.Verification},
		{training.ActFailed, &k.Failed},
		{training.ActReveal, &k.Reveal},
	}
}

// enableFor turns on the bindings of the offered actions only.
func (k *keyMap) enableFor(actions []training.Action) {
	offered := make(map[training.Action]bool, len(actions))
	for _, a := range actions {
		offered[a] = true
	}
	for _, ab := range k.actionBindings() {
		ab.binding.SetEnabled(offered[ab.action])
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{}
	for _, ab := range k.actionBindings() {
		if ab.binding.Enabled() {
			bindings = append(bindings, *ab.binding)
		}
	}
	return append(bindings, k.Jump, k.Reset, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
