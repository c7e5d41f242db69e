package cipher

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OpKind identifies a character buffer transformation.
type OpKind int

const (
	OpReverse OpKind = iota
	OpSlice
	OpSplice
	OpSwap
)

var opKindNames = map[OpKind]string{
	OpReverse: "reverse",
	OpSlice:   "slice",
	OpSplice:  "splice",
	OpSwap:    "swap",
}

// String returns the lowercase name of the kind.
func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// ParseOpKind parses a kind name as produced by OpKind.String.
func ParseOpKind(name string) (OpKind, error) {
	for k, n := range opKindNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown operation: %q", name)
}

// Operation is a single step of a cipher program. Arg is ignored for OpReverse.
type Operation struct {
	Kind OpKind
	Arg  int
}

// Reverse reverses the whole buffer.
func Reverse() Operation { return Operation{Kind: OpReverse} }

// Slice drops the first n elements of the buffer.
func Slice(n int) Operation { return Operation{Kind: OpSlice, Arg: nonNegative(n)} }

// Splice drops the first n elements of the buffer. It has the same effect as
// Slice; the two are kept apart because the script spells them differently.
func Splice(n int) Operation { return Operation{Kind: OpSplice, Arg: nonNegative(n)} }

// Swap exchanges the first element with the element at n modulo length.
func Swap(n int) Operation { return Operation{Kind: OpSwap, Arg: nonNegative(n)} }

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// String renders the operation as "swap(3)", "reverse", ...
func (op Operation) String() string {
	if op.Kind == OpReverse {
		return op.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", op.Kind, op.Arg)
}

// apply transforms buf and returns the (possibly shorter) result.
func (op Operation) apply(buf []rune) []rune {
	switch op.Kind {
	case OpReverse:
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		return buf
	case OpSlice, OpSplice:
		n := nonNegative(op.Arg)
		if n >= len(buf) {
			return buf[:0]
		}
		return buf[n:]
	case OpSwap:
		if len(buf) == 0 {
			return buf
		}
		i := nonNegative(op.Arg) % len(buf)
		buf[0], buf[i] = buf[i], buf[0]
		return buf
	default:
		return buf
	}
}

// Cipher is an immutable, ordered list of operations recovered from a player
// script. The zero value and an empty Cipher are valid identity transforms.
type Cipher struct {
	ops []Operation
}

// NewCipher builds a Cipher from a copy of ops.
func NewCipher(ops ...Operation) *Cipher {
	c := &Cipher{ops: make([]Operation, len(ops))}
	copy(c.ops, ops)
	return c
}

// Operations returns a copy of the program.
func (c *Cipher) Operations() []Operation {
	if c == nil {
		return nil
	}
	out := make([]Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

// Len returns the number of operations.
func (c *Cipher) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ops)
}

// Empty reports whether the cipher has no operations.
func (c *Cipher) Empty() bool { return c.Len() == 0 }

// Apply runs the program over token. Each call works on its own buffer, so a
// Cipher can be shared between goroutines. The buffer holds runes: invalid
// UTF-8 bytes come back as U+FFFD, which real signatures (ASCII) never hit.
func (c *Cipher) Apply(token string) string {
	if c.Empty() {
		return token
	}
	buf := []rune(token)
	for _, op := range c.ops {
		buf = op.apply(buf)
	}
	return string(buf)
}

// String renders the program as a space separated list.
func (c *Cipher) String() string {
	if c.Empty() {
		return "<identity>"
	}
	parts := make([]string, 0, len(c.ops))
	for _, op := range c.ops {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, " ")
}

type jsonOperation struct {
	Op  string `json:"op"`
	Arg int    `json:"arg,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c *Cipher) MarshalJSON() ([]byte, error) {
	out := make([]jsonOperation, 0, c.Len())
	for _, op := range c.Operations() {
		out = append(out, jsonOperation{Op: op.Kind.String(), Arg: op.Arg})
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Cipher) UnmarshalJSON(data []byte) error {
	var in []jsonOperation
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	ops := make([]Operation, 0, len(in))
	for _, o := range in {
		kind, err := ParseOpKind(o.Op)
		if err != nil {
			return err
		}
		if o.Arg < 0 {
			return fmt.Errorf("negative argument for %s: %d", kind, o.Arg)
		}
		ops = append(ops, Operation{Kind: kind, Arg: o.Arg})
	}
	c.ops = ops
	return nil
}
