package block

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	localNameLength = 17
	familyToken     = "MESH-100"
)

// Kind identifies a block type.
type Kind int

// Block kinds. KindUnknown is the zero value and has no codec.
const (
	KindUnknown Kind = iota
	KindButton
	KindMove
	KindLED
)

var kindNames = map[Kind]string{
	KindButton: "button",
	KindMove:   "move",
	KindLED:    "led",
}

var kindSubtokens = map[Kind]string{
	KindButton: "MESH-100BU",
	KindMove:   "MESH-100AC",
	KindLED:    "MESH-100LE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Subtoken returns the advertised-name token that identifies the kind.
func (k Kind) Subtoken() string {
	return kindSubtokens[k]
}

// ParseKind parses a kind name as used in configuration ("button", "move", "led").
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("block: unknown kind %q", s)
}

// IsMESHBlock reports whether name is the advertised local name of any
// MESH block. An empty name never matches. When serial is non-empty the
// name must also contain it.
func IsMESHBlock(name, serial string) bool {
	if name == "" {
		return false
	}
	if utf8.RuneCountInString(name) != localNameLength {
		return false
	}
	if !strings.Contains(name, familyToken) {
		return false
	}
	if serial != "" && !strings.Contains(name, serial) {
		return false
	}
	return true
}

// IsBlock reports whether name passes IsMESHBlock and carries subtoken.
func IsBlock(name, subtoken, serial string) bool {
	if !IsMESHBlock(name, serial) {
		return false
	}
	return strings.Contains(name, subtoken)
}

// IsButton reports whether name is an advertised button block.
func IsButton(name, serial string) bool { return IsBlock(name, KindButton.Subtoken(), serial) }

// IsMove reports whether name is an advertised move block.
func IsMove(name, serial string) bool { return IsBlock(name, KindMove.Subtoken(), serial) }

// IsLED reports whether name is an advertised LED block.
func IsLED(name, serial string) bool { return IsBlock(name, KindLED.Subtoken(), serial) }

// KindOf classifies an advertised name. It returns false for names that
// are not MESH blocks or belong to a kind this package has no codec for.
func KindOf(name, serial string) (Kind, bool) {
	for _, k := range []Kind{KindButton, KindMove, KindLED} {
		if IsBlock(name, k.Subtoken(), serial) {
			return k, true
		}
	}
	return KindUnknown, false
}
