package tags

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"filling_line/internal/machine"
)

// StatusCode is the outcome of a method call.
type StatusCode uint32

const (
	Good StatusCode = iota
	BadMethodInvalid
	BadArgumentsMissing
	BadTooManyArguments
	BadTypeMismatch
	BadInternalError
)

func (c StatusCode) String() string {
	switch c {
	case Good:
		return "Good"
	case BadMethodInvalid:
		return "BadMethodInvalid"
	case BadArgumentsMissing:
		return "BadArgumentsMissing"
	case BadTooManyArguments:
		return "BadTooManyArguments"
	case BadTypeMismatch:
		return "BadTypeMismatch"
	case BadInternalError:
		return "BadInternalError"
	default:
		return fmt.Sprintf("StatusCode(%d)", uint32(c))
	}
}

func (c StatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Result is returned by every Call. Outputs is empty unless Code is Good.
type Result struct {
	Code    StatusCode `json:"code"`
	Outputs []Value    `json:"outputs"`
	Message string     `json:"message,omitempty"`
}

func (r Result) OK() bool { return r.Code == Good }

func fail(code StatusCode, format string, args ...any) Result {
	return Result{Code: code, Outputs: []Value{}, Message: fmt.Sprintf(format, args...)}
}

// Commander is the set of machine operations reachable through the dispatcher.
type Commander interface {
	StartMachine()
	StopMachine()
	EmergencyStop()
	EnterMaintenanceMode()
	StartCIPCycle()
	StartSIPCycle()
	ResetCounters()
	RefillTank()
	GenerateLotNumber() string
	AdjustFillVolume(volume float64) bool
	LoadProductionOrder(o machine.Order)
	ChangeProduct(p machine.ProductChange)
}

// Argument describes one positional input or output.
type Argument struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`
}

func (a Argument) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}{a.Name, a.Kind.String()})
}

// Method is one entry of the dispatch table. call receives arguments that
// already match Inputs in count and kind.
type Method struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Inputs      []Argument `json:"inputs"`
	Outputs     []Argument `json:"outputs"`
	call        func(c Commander, args []Value) []Value
}

// Signature renders the method as Name(arg Kind, ...) -> Kind.
func (m Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, in := range m.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", in.Name, in.Kind)
	}
	b.WriteByte(')')
	for i, out := range m.Outputs {
		if i == 0 {
			b.WriteString(" -> ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", out.Name, out.Kind)
	}
	return b.String()
}

func noArgs(fn func(c Commander)) func(c Commander, args []Value) []Value {
	return func(c Commander, _ []Value) []Value {
		fn(c)
		return nil
	}
}

var methods = []Method{
	{
		Name:        "StartMachine",
		Description: "Start the machine; Running after the start delay",
		call:        noArgs(Commander.StartMachine),
	},
	{
		Name:        "StopMachine",
		Description: "Stop the machine; Stopped after the stop delay",
		call:        noArgs(Commander.StopMachine),
	},
	{
		Name:        "EmergencyStop",
		Description: "Immediately put the machine into Error",
		call:        noArgs(Commander.EmergencyStop),
	},
	{
		Name:        "EnterMaintenanceMode",
		Description: "Switch the machine into Maintenance from any state",
		call:        noArgs(Commander.EnterMaintenanceMode),
	},
	{
		Name:        "StartCIPCycle",
		Description: "Run a clean-in-place cycle on a stopped or maintained machine",
		call:        noArgs(Commander.StartCIPCycle),
	},
	{
		Name:        "StartSIPCycle",
		Description: "Run a sterilize-in-place cycle on a stopped or maintained machine",
		call:        noArgs(Commander.StartSIPCycle),
	},
	{
		Name:        "ResetCounters",
		Description: "Zero the global bottle counters",
		call:        noArgs(Commander.ResetCounters),
	},
	{
		Name:        "RefillTank",
		Description: "Refill the product tank to 100%",
		call:        noArgs(Commander.RefillTank),
	},
	{
		Name:        "GenerateLotNumber",
		Description: "Derive and store a new lot number",
		Outputs:     []Argument{{"lotNumber", KindString}},
		call: func(c Commander, _ []Value) []Value {
			return []Value{StringValue(c.GenerateLotNumber())}
		},
	},
	{
		Name:        "AdjustFillVolume",
		Description: "Change the fill volume target within 5% of the current target",
		Inputs:      []Argument{{"newFillVolume", KindDouble}},
		call: func(c Commander, args []Value) []Value {
			c.AdjustFillVolume(args[0].Double())
			return nil
		},
	},
	{
		Name:        "LoadProductionOrder",
		Description: "Replace the production order and all targets",
		Inputs: []Argument{
			{"productionOrder", KindString},
			{"article", KindString},
			{"quantity", KindUInt32},
			{"targetFillVolume", KindDouble},
			{"targetLineSpeed", KindDouble},
			{"targetProductTemperature", KindDouble},
			{"targetCO2Pressure", KindDouble},
			{"targetCapTorque", KindDouble},
			{"targetCycleTime", KindDouble},
		},
		call: func(c Commander, args []Value) []Value {
			c.LoadProductionOrder(machine.Order{
				Number:             args[0].String(),
				Article:            args[1].String(),
				Quantity:           args[2].UInt32(),
				FillVolume:         args[3].Double(),
				LineSpeed:          args[4].Double(),
				ProductTemperature: args[5].Double(),
				CO2Pressure:        args[6].Double(),
				CapTorque:          args[7].Double(),
				CycleTime:          args[8].Double(),
			})
			return nil
		},
	},
	{
		Name:        "ChangeProduct",
		Description: "Sanitize the line and switch to a new article",
		Inputs: []Argument{
			{"newArticle", KindString},
			{"newFillVolume", KindDouble},
			{"newProductTemperature", KindDouble},
			{"newCO2Pressure", KindDouble},
		},
		call: func(c Commander, args []Value) []Value {
			c.ChangeProduct(machine.ProductChange{
				Article:            args[0].String(),
				FillVolume:         args[1].Double(),
				ProductTemperature: args[2].Double(),
				CO2Pressure:        args[3].Double(),
			})
			return nil
		},
	},
}

var methodsByName = func() map[string]*Method {
	out := make(map[string]*Method, len(methods))
	for i := range methods {
		out[methods[i].Name] = &methods[i]
	}
	return out
}()

// Methods returns the dispatch table in declaration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// WriteMethods prints one "signature<TAB>description" line per method.
func WriteMethods(w io.Writer) error {
	for _, m := range methods {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", m.Signature(), m.Description); err != nil {
			return err
		}
	}
	return nil
}

// Dispatcher invokes methods by name against a Commander.
type Dispatcher struct {
	target Commander
}

func NewDispatcher(target Commander) *Dispatcher {
	return &Dispatcher{target: target}
}

// Call validates args against the method's inputs and invokes it. Nothing is
// invoked unless every argument coerces to its declared kind. A panic in the
// target is reported as BadInternalError.
func (d *Dispatcher) Call(name string, args []any) (res Result) {
	m, ok := methodsByName[name]
	if !ok {
		return fail(BadMethodInvalid, "unknown method %q", name)
	}
	if len(args) < len(m.Inputs) {
		return fail(BadArgumentsMissing, "%s expects %d arguments, got %d", name, len(m.Inputs), len(args))
	}
	if len(args) > len(m.Inputs) {
		return fail(BadTooManyArguments, "%s expects %d arguments, got %d", name, len(m.Inputs), len(args))
	}

	values := make([]Value, len(args))
	for i, in := range m.Inputs {
		v, err := Coerce(in.Kind, args[i])
		if err != nil {
			return fail(BadTypeMismatch, "%s argument %d (%s): %v", name, i, in.Name, err)
		}
		values[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(BadInternalError, "%s: %v", name, r)
		}
	}()

	out := m.call(d.target, values)
	if out == nil {
		out = []Value{}
	}
	return Result{Code: Good, Outputs: out}
}

// Coerce converts a decoded argument to kind. Numbers coming from JSON arrive
// as float64 or json.Number; UInt32 accepts them only when integral and in range.
func Coerce(kind Kind, arg any) (Value, error) {
	if v, ok := arg.(Value); ok {
		if v.Kind() != kind {
			return Value{}, fmt.Errorf("expected %s, got %s", kind, v.Kind())
		}
		return v, nil
	}

	switch kind {
	case KindString:
		s, ok := arg.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected String, got %T", arg)
		}
		return StringValue(s), nil
	case KindDouble:
		f, ok := toFloat(arg)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("expected Double, got %T(%v)", arg, arg)
		}
		return DoubleValue(f), nil
	case KindUInt32:
		f, ok := toFloat(arg)
		if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
			return Value{}, fmt.Errorf("expected UInt32, got %T(%v)", arg, arg)
		}
		return UInt32Value(uint32(f)), nil
	default:
		return Value{}, fmt.Errorf("arguments of kind %s are not supported", kind)
	}
}

func toFloat(arg any) (float64, bool) {
	switch n := arg.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
