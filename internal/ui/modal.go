// Package ui defines the modal dialog variants the frontend renders.
// Each variant is its own type with its own required fields; rendering
// dispatches on the type, not on a string tag.
package ui

// Modal is the sealed set of dialog variants.
type Modal interface {
	modal()
}

// Confirm asks the user to acknowledge a non-destructive action.
type Confirm struct {
	Title      string `json:"title"`
	ActionText string `json:"actionText"`
}

// DestructiveConfirm guards a destructive action; the confirm button is
// rendered as dangerous and the action must not run without it.
type DestructiveConfirm struct {
	Title      string `json:"title"`
	ActionText string `json:"actionText"`
}

// SingleSelect presents a list of options and resolves to the chosen id.
type SingleSelect struct {
	Title   string         `json:"title"`
	Options []SelectOption `json:"options"`
}

// SelectOption is one row of a SingleSelect.
type SelectOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// TextPrompt asks for a free-text value.
type TextPrompt struct {
	Title       string `json:"title"`
	Placeholder string `json:"placeholder"`
	ActionText  string `json:"actionText"`
}

func (Confirm) modal()            {}
func (DestructiveConfirm) modal() {}
func (SingleSelect) modal()       {}
func (TextPrompt) modal()         {}

// Payload is the wire shape of a modal: the variant name plus its fields.
type Payload struct {
	Kind  string `json:"kind"`
	Modal Modal  `json:"modal"`
}

// Describe tags a modal with its variant name for the frontend.
func Describe(m Modal) Payload {
	switch m.(type) {
	case Confirm:
		return Payload{Kind: "confirm", Modal: m}
	case DestructiveConfirm:
		return Payload{Kind: "danger", Modal: m}
	case SingleSelect:
		return Payload{Kind: "selector", Modal: m}
	case TextPrompt:
		return Payload{Kind: "prompt", Modal: m}
	default:
		return Payload{Kind: "unknown", Modal: m}
	}
}
