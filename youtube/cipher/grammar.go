package cipher

import (
	"regexp"
	"strconv"
)

const (
	jsVar = `[a-zA-Z_$][a-zA-Z_0-9$]*`

	reverseBody = `:function\(a\)\{(?:return )?a\.reverse\(\)\}`
	sliceBody   = `:function\(a,b\)\{return a\.slice\(b\)\}`
	spliceBody  = `:function\(a,b\)\{a\.splice\(0,b\)\}`
	swapBody    = `:function\(a,b\)\{var c=a\[0\];a\[0\]=a\[b%a\.length\];a\[b(?:%a\.length)?\]=c(?:;return a)?\}`

	memberPrefix = `(?m)(?:^|,)(` + jsVar + `)`
)

var (
	actionsRegex = regexp.MustCompile(`var (` + jsVar + `)=\{((?:(?:` +
		jsVar + reverseBody + `|` +
		jsVar + sliceBody + `|` +
		jsVar + spliceBody + `|` +
		jsVar + swapBody +
		`),?\n?)+)\};`)

	functionRegex = regexp.MustCompile(`function(?: ` + jsVar + `)?\(a\)\{` +
		`a=a\.split\(""\);\s*` +
		`((?:(?:a=)?` + jsVar + `\.` + jsVar + `\(a,\d+\);)+)` +
		`return a\.join\(""\)` +
		`\}`)

	reverseMember = regexp.MustCompile(memberPrefix + reverseBody)
	sliceMember   = regexp.MustCompile(memberPrefix + sliceBody)
	spliceMember  = regexp.MustCompile(memberPrefix + spliceBody)
	swapMember    = regexp.MustCompile(memberPrefix + swapBody)
)

// Recognizer turns player script text into a cipher program. Implementations
// return a format error (see IsFormat) when the script does not have the
// shape they understand.
type Recognizer interface {
	Extract(script string) (*Extraction, error)
}

// Extraction is the result of recognizing a player script.
type Extraction struct {
	Cipher *Cipher
	// ObjectName is the name of the helper object holding the operations.
	ObjectName string
	// ObjectSource is the matched "var X={...};" statement.
	ObjectSource string
	// FunctionSource is the matched decipher function.
	FunctionSource string
	// Members maps helper member names to the kind of their body.
	Members map[string]OpKind
}

// PatternRecognizer matches the helper object and the decipher function by
// the shape of their bodies. Member names are minified and never relied on.
type PatternRecognizer struct{}

var defaultRecognizer Recognizer = PatternRecognizer{}

// Extract recognizes script with the default PatternRecognizer.
func Extract(script string) (*Extraction, error) {
	return defaultRecognizer.Extract(script)
}

// Extract implements Recognizer.
func (PatternRecognizer) Extract(script string) (*Extraction, error) {
	actions := actionsRegex.FindStringSubmatch(script)
	if actions == nil {
		return nil, NewError(ErrCodeActionsNotFound, "operation helper object not found in player script")
	}
	objName, objBody := actions[1], actions[2]

	members := make(map[string]OpKind, 4)
	for kind, re := range map[OpKind]*regexp.Regexp{
		OpReverse: reverseMember,
		OpSlice:   sliceMember,
		OpSplice:  spliceMember,
		OpSwap:    swapMember,
	} {
		for _, m := range re.FindAllStringSubmatch(objBody, -1) {
			members[m[1]] = kind
		}
	}

	fn := functionRegex.FindStringSubmatch(script)
	if fn == nil {
		return nil, NewError(ErrCodeFunctionNotFound, "decipher function not found in player script")
	}

	calls := regexp.MustCompile(`(?:a=)?` + regexp.QuoteMeta(objName) + `\.(` + jsVar + `)\(a,(\d+)\)`)

	var ops []Operation
	for _, call := range calls.FindAllStringSubmatch(fn[1], -1) {
		kind, ok := members[call[1]]
		if !ok {
			continue
		}
		arg, err := strconv.Atoi(call[2])
		if err != nil {
			continue
		}
		switch kind {
		case OpSwap:
			ops = append(ops, Swap(arg))
		case OpReverse:
			ops = append(ops, Reverse())
		case OpSlice:
			ops = append(ops, Slice(arg))
		case OpSplice:
			ops = append(ops, Splice(arg))
		}
	}

	return &Extraction{
		Cipher:         NewCipher(ops...),
		ObjectName:     objName,
		ObjectSource:   actions[0],
		FunctionSource: fn[0],
		Members:        members,
	}, nil
}
