package semantics

// EventSchema records which DOM event names are recognized for `trigger`
// / `delegate` / `capture` binding commands and event-modifier shorthand
// (`@event:modifier`).
type EventSchema struct {
	Known     map[string]bool
	Modifiers map[string]bool
}

func builtinEventSchema() EventSchema {
	return EventSchema{
		Known: setOf(
			"click", "dblclick", "mousedown", "mouseup", "mousemove",
			"mouseenter", "mouseleave", "mouseover", "mouseout",
			"keydown", "keyup", "keypress",
			"input", "change", "submit", "reset", "focus", "blur",
			"focusin", "focusout", "scroll", "wheel", "drag", "drop",
			"dragstart", "dragend", "dragover", "touchstart", "touchend",
			"touchmove", "pointerdown", "pointerup", "pointermove",
			"load", "error", "resize", "animationend", "transitionend",
		),
		Modifiers: setOf("self", "prevent", "stop", "once", "passive", "capture"),
	}
}

// IsKnown reports whether name is a recognized native event.
func (e EventSchema) IsKnown(name string) bool { return e.Known[name] }
