package command

// Discriminating payload keys. A mapping payload must match exactly one
// recognized shape: {event}, {event,data}, {data}, {on}, or {off}.
// Any other combination of discriminators is ambiguous and classifies
// as invalid rather than being resolved by priority.
const (
	keyEvent   = "event"
	keyData    = "data"
	keyInfo    = "info"
	keyOn      = "on"
	keyOff     = "off"
	keyHandler = "handler"
	keyPath    = "path"
	keyScope   = "scope"
)

// Classify inspects payload and produces a Command stamped with index.
//
// Shape rules, in order:
//  1. mapping with an "event" string: KindEvent, attaching the optional
//     "data" mapping and "info" value
//  2. mapping with a "data" mapping and no "event": KindData
//  3. mapping with an "on" string: KindListenerOn; requires a callable
//     "handler"; optional "path" string and "scope" string (unrecognized
//     scopes fall back to "all")
//  4. mapping with an "off" string: KindListenerOff; "handler" optional -
//     absent means remove every listener for the event
//  5. a function value (Func, func(Queue), or func()): KindFunc
//  6. anything else: KindInvalid
//
// Required fields with the wrong type (event name that is not a string,
// missing handler on "on", non-string "path") make the payload invalid,
// never silently coerced.
func Classify(payload any, index int) Command {
	cmd := Command{Kind: KindInvalid, Payload: payload, Index: index}

	if fn, ok := asFunc(payload); ok {
		cmd.Kind = KindFunc
		cmd.Fn = fn
		return cmd
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return cmd
	}

	_, hasEvent := obj[keyEvent]
	_, hasData := obj[keyData]
	_, hasOn := obj[keyOn]
	_, hasOff := obj[keyOff]

	switch {
	case hasEvent && !hasOn && !hasOff:
		return classifyEvent(obj, cmd)
	case hasData && !hasEvent && !hasOn && !hasOff:
		return classifyData(obj, cmd)
	case hasOn && !hasEvent && !hasData && !hasOff:
		return classifyListenerOn(obj, cmd)
	case hasOff && !hasEvent && !hasData && !hasOn:
		return classifyListenerOff(obj, cmd)
	default:
		return cmd
	}
}

func classifyEvent(obj map[string]any, cmd Command) Command {
	name, ok := obj[keyEvent].(string)
	if !ok || name == "" {
		return cmd
	}

	cmd.Kind = KindEvent
	cmd.Event = name
	cmd.Info = obj[keyInfo]
	// Data is optional on events; a non-mapping value is ignored rather
	// than merged as garbage.
	if data, ok := obj[keyData].(map[string]any); ok {
		cmd.Data = data
	}
	return cmd
}

func classifyData(obj map[string]any, cmd Command) Command {
	data, ok := obj[keyData].(map[string]any)
	if !ok {
		return cmd
	}

	cmd.Kind = KindData
	cmd.Data = data
	return cmd
}

func classifyListenerOn(obj map[string]any, cmd Command) Command {
	name, ok := obj[keyOn].(string)
	if !ok || name == "" {
		return cmd
	}

	handler, ok := asHandler(obj[keyHandler])
	if !ok {
		return cmd
	}

	path := ""
	if raw, present := obj[keyPath]; present {
		path, ok = raw.(string)
		if !ok {
			return cmd
		}
	}

	scopeRaw := ""
	if raw, present := obj[keyScope]; present {
		// Unrecognized scope values fall back to "all"; a scope of the
		// wrong type is treated the same way.
		scopeRaw, _ = raw.(string)
	}

	cmd.Kind = KindListenerOn
	cmd.Event = name
	cmd.Handler = handler
	cmd.Path = path
	cmd.Scope = NormalizeScope(scopeRaw)
	return cmd
}

func classifyListenerOff(obj map[string]any, cmd Command) Command {
	name, ok := obj[keyOff].(string)
	if !ok || name == "" {
		return cmd
	}

	// Handler is optional: absent means remove all listeners for the
	// event. A present but non-callable handler is malformed.
	if raw, present := obj[keyHandler]; present {
		handler, ok := asHandler(raw)
		if !ok {
			return cmd
		}
		cmd.Handler = handler
	}

	cmd.Kind = KindListenerOff
	cmd.Event = name
	return cmd
}

// asHandler coerces the supported handler shapes onto Handler.
func asHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case Handler:
		return h, h != nil
	case func(Notification):
		return h, h != nil
	default:
		return nil, false
	}
}

// asFunc coerces the supported function-payload shapes onto Func.
func asFunc(v any) (Func, bool) {
	switch fn := v.(type) {
	case Func:
		return fn, fn != nil
	case func(Queue):
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func(Queue) { fn() }, true
	default:
		return nil, false
	}
}
