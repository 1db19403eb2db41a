package graph

// Node kinds, as written by the editor.
const (
	KindText   = "TEXT"
	KindColor  = "COLOR"
	KindNumber = "NUMBER"
	KindToggle = "TOGGLE"

	KindEqual        = "EQUAL"
	KindNotEqual     = "NOT_EQUAL"
	KindGreaterThan  = "GREATER_THAN"
	KindLessThan     = "LESS_THAN"
	KindGreaterEqual = "GREATER_EQUAL"
	KindLessEqual    = "LESS_EQUAL"

	KindAnd = "AND"
	KindOr  = "OR"
	KindNot = "NOT"

	KindAdd      = "ADD"
	KindSubtract = "SUBTRACT"
	KindMultiply = "MULTIPLY"
	KindDivide   = "DIVIDE"
	KindModulo   = "MODULO"
	KindPower    = "POWER"
	KindNegate   = "NEGATE"
	KindAbs      = "ABS"
	KindRound    = "ROUND"
	KindFloor    = "FLOOR"
	KindCeil     = "CEIL"
	KindMin      = "MIN"
	KindMax      = "MAX"
	KindClamp    = "CLAMP"
	KindMapRange = "MAP_RANGE"
	KindRandom   = "RANDOM"
	KindSin      = "SIN"
	KindCos      = "COS"

	KindConcat = "CONCAT"

	KindHover = "INTERACTION_HOVER"
	KindClick = "INTERACTION_CLICK"
	KindTimer = "TIMER"

	KindIfElse = "IF_ELSE"

	KindStyle      = "STYLE"
	KindAnimation  = "ANIMATION"
	KindTransition = "TRANSITION"
	KindMerge      = "MERGE"

	KindNavigate = "NAVIGATE"
	KindLink     = "LINK"
	KindAlert    = "ALERT"

	KindOutput = "OUTPUT"
)

// Input socket ids.
const (
	SocketA         = "in-a"
	SocketB         = "in-b"
	SocketCondition = "in-condition"
	SocketTrue      = "in-true"
	SocketFalse     = "in-false"
	SocketValue     = "in-value"
	SocketMin       = "in-min"
	SocketMax       = "in-max"
	SocketInMin     = "in-in-min"
	SocketInMax     = "in-in-max"
	SocketOutMin    = "in-out-min"
	SocketOutMax    = "in-out-max"
	SocketSpeed     = "in-speed"
	SocketBg        = "in-bg"
	SocketText      = "in-text"
	SocketSize      = "in-size"
	SocketTrigger   = "in-trigger"
	SocketDuration  = "in-duration"
	SocketDelay     = "in-delay"
	SocketStyleA    = "in-style-a"
	SocketStyleB    = "in-style-b"
	SocketURL       = "in-url"
	SocketNewTab    = "in-new-tab"
	SocketMessage   = "in-message"
	SocketStyle     = "in-style"
	SocketContent   = "in-content"
)

var knownKinds = map[string]struct{}{}

func init() {
	for _, k := range []string{
		KindText, KindColor, KindNumber, KindToggle,
		KindEqual, KindNotEqual, KindGreaterThan, KindLessThan, KindGreaterEqual, KindLessEqual,
		KindAnd, KindOr, KindNot,
		KindAdd, KindSubtract, KindMultiply, KindDivide, KindModulo, KindPower, KindNegate,
		KindAbs, KindRound, KindFloor, KindCeil, KindMin, KindMax, KindClamp, KindMapRange,
		KindRandom, KindSin, KindCos,
		KindConcat,
		KindHover, KindClick, KindTimer,
		KindIfElse,
		KindStyle, KindAnimation, KindTransition, KindMerge,
		KindNavigate, KindLink, KindAlert,
		KindOutput,
	} {
		knownKinds[k] = struct{}{}
	}
}

// IsKnown reports whether kind belongs to the built-in catalog.
func IsKnown(kind string) bool {
	_, ok := knownKinds[kind]
	return ok
}

// IsAction reports whether kind is a side-effecting trigger/action node.
func IsAction(kind string) bool {
	return kind == KindNavigate || kind == KindLink || kind == KindAlert
}

// InfiniteAnimations run forever; every other animation kind plays once.
var InfiniteAnimations = map[string]bool{
	"spin":   true,
	"pulse":  true,
	"shake":  true,
	"bounce": true,
}
