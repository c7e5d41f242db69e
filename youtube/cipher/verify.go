package cipher

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/robertkrimen/otto"
)

const (
	verifyEntryName = "__ytcipherDecode"
	probeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// DefaultProbe is the token run through both the script and the cipher during
// verification. It is longer than any argument seen in practice so swaps
// never index past the end of the JavaScript array.
var DefaultProbe = strings.Repeat(probeAlphabet, 2)

// Verifier cross-checks an extraction by executing the located script
// fragments and comparing their output with Cipher.Apply.
type Verifier interface {
	Verify(x *Extraction) error
}

// MismatchError reports that the script and the extracted cipher disagree.
type MismatchError struct {
	Engine string
	Probe  string
	Script string
	Cipher string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s verification mismatch: script=%q cipher=%q", e.Engine, e.Script, e.Cipher)
}

// NewVerifier returns a verifier for the named engine ("otto" or "goja").
// "off" and "" return nil.
func NewVerifier(engine string) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "off", "none":
		return nil, nil
	case "otto":
		return OttoVerifier{}, nil
	case "goja":
		return GojaVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown verify engine: %s", engine)
	}
}

// verifyProgram joins the helper object and the decipher function into a
// standalone script exposing verifyEntryName.
func verifyProgram(x *Extraction) string {
	return x.ObjectSource + "\nvar " + verifyEntryName + "=" + x.FunctionSource + ";"
}

func compareOutput(engine string, x *Extraction, probe, script string) error {
	if got := x.Cipher.Apply(probe); got != script {
		return &MismatchError{Engine: engine, Probe: probe, Script: script, Cipher: got}
	}
	return nil
}

// OttoVerifier runs the fragments in otto.
type OttoVerifier struct {
	Probe string
}

// Verify implements Verifier.
func (v OttoVerifier) Verify(x *Extraction) error {
	probe := v.Probe
	if probe == "" {
		probe = DefaultProbe
	}
	vm := otto.New()
	if _, err := vm.Run(verifyProgram(x)); err != nil {
		return Wrap(ErrCodeVerifyFailed, "failed to run helper in otto", err)
	}
	value, err := vm.Call(verifyEntryName, nil, probe)
	if err != nil {
		return Wrap(ErrCodeVerifyFailed, "failed to call decipher function", err)
	}
	out, err := value.ToString()
	if err != nil {
		return Wrap(ErrCodeVerifyFailed, "decipher function did not return a string", err)
	}
	return compareOutput("otto", x, probe, out)
}

// GojaVerifier runs the fragments in goja.
type GojaVerifier struct {
	Probe string
}

// Verify implements Verifier.
func (v GojaVerifier) Verify(x *Extraction) error {
	probe := v.Probe
	if probe == "" {
		probe = DefaultProbe
	}
	vm := goja.New()
	if _, err := vm.RunString(verifyProgram(x)); err != nil {
		return Wrap(ErrCodeVerifyFailed, "failed to run helper in goja", err)
	}
	fn, ok := goja.AssertFunction(vm.Get(verifyEntryName))
	if !ok {
		return NewError(ErrCodeVerifyFailed, "decipher function is not callable")
	}
	res, err := fn(goja.Undefined(), vm.ToValue(probe))
	if err != nil {
		return Wrap(ErrCodeVerifyFailed, "failed to call decipher function", err)
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		return NewError(ErrCodeVerifyFailed, "decipher function returned undefined/null")
	}
	return compareOutput("goja", x, probe, res.String())
}
