package semantics

// BindingCommandDef describes one binding command recognized after the
// `.` in `target.command="expr"`.
type BindingCommandDef struct {
	Name          string
	Mode          BindableMode // BindableModeDefault for commands that defer to bindable/tag defaults
	IsListener    bool
	IsRef         bool
	IsIterator    bool
	IsTranslation bool
	Package       string // "" for built-ins
}

// AttributePatternDef describes a shorthand attribute syntax such as
// `:prop` (property-bind) or `@event` (trigger).
type AttributePatternDef struct {
	Name        string // descriptive name, e.g. "colon-prefix", "at-prefix"
	Prefix      string
	EquivalentCommand string // the binding command this shorthand expands to
	IsListener  bool
}

// builtinControllers returns the built-in template controllers
// recognized by name during lowering, each backed by a ControllerFacts
// triple that the bind stage actually keys off of (spec.md §9: "no
// hardcoded controller names in the bind stage" — lowering still needs
// the *name* to find the ResourceDef, but its scope *behavior* only ever
// comes from the def's ControllerFacts).
func builtinControllers() []ResourceDef {
	mk := func(name string, scope ScopeBehavior, pattern FrameOriginPattern, injects ...string) ResourceDef {
		return ResourceDef{
			Kind:      KindTemplateController,
			Name:      NewSourced(name, OriginBuiltin, nil),
			ClassName: NewSourced(PascalCase(name), OriginBuiltin, nil),
			Controller: &ControllerFacts{
				Scope:   scope,
				Pattern: pattern,
				Injects: injects,
			},
		}
	}
	return []ResourceDef{
		mk("if", ScopeReuse, PatternNone),
		mk("else", ScopeReuse, PatternNone),
		mk("repeat", ScopeOverlay, PatternIterator,
			"$index", "$first", "$last", "$even", "$odd", "$length", "$middle"),
		mk("with", ScopeOverlay, PatternValueOverlay),
		mk("switch", ScopeReuse, PatternNone),
		mk("case", ScopeReuse, PatternNone),
		mk("default-case", ScopeReuse, PatternNone),
		mk("promise", ScopeOverlay, PatternPromiseValue),
		mk("then", ScopeOverlay, PatternPromiseBranch),
		mk("catch", ScopeOverlay, PatternPromiseBranch),
		mk("pending", ScopeReuse, PatternNone),
		mk("portal", ScopeReuse, PatternNone),
	}
}

func builtinBindingCommands() []BindingCommandDef {
	return []BindingCommandDef{
		{Name: "bind", Mode: BindableModeDefault},
		{Name: "to-view", Mode: BindableModeToView},
		{Name: "one-time", Mode: BindableModeOneTime},
		{Name: "from-view", Mode: BindableModeFromView},
		{Name: "two-way", Mode: BindableModeTwoWay},
		{Name: "trigger", IsListener: true},
		{Name: "capture", IsListener: true},
		{Name: "delegate", IsListener: true},
		{Name: "for", IsIterator: true},
		{Name: "ref", IsRef: true},
		{Name: "t", IsTranslation: true, Mode: BindableModeToView},
		{Name: "t.bind", IsTranslation: true, Mode: BindableModeDefault},
	}
}

func builtinAttributePatterns() []AttributePatternDef {
	return []AttributePatternDef{
		{Name: "colon-prefix", Prefix: ":", EquivalentCommand: "bind"},
		{Name: "at-prefix", Prefix: "@", EquivalentCommand: "trigger", IsListener: true},
	}
}

// builtinValueConverters and builtinBindingBehaviors are intentionally
// empty: the framework ships none by default in this spec's scope
// (i18n's `t` is a binding command, not a value converter, per spec.md
// §6). Plugins contribute these via the plugin-activation recognizer.
func builtinValueConverters() []ResourceDef  { return nil }
func builtinBindingBehaviors() []ResourceDef { return nil }

func builtinCustomElements() []ResourceDef   { return nil }
func builtinCustomAttributes() []ResourceDef { return nil }
