package symbols

// Frame byte offsets relative to the frame pointer, per the activation
// record layout: static link below the frame pointer, dynamic link at it,
// the return address above it, locals growing upward from there, and
// parameters growing downward from the static link.
const (
	StaticLinkOffset  = -8
	DynamicLinkOffset = 0
	ReturnAddrOffset  = 8
	LocalsStartOffset = 16
	ParamsStartOffset = -16
)

// FrameLayout assigns frame-relative byte offsets to a function's
// parameters and locals, and reports the frame's total size.
type FrameLayout struct {
	nextLocalOffset int // grows upward from LocalsStartOffset
	nextParamOffset int // grows downward from ParamsStartOffset
}

// NewFrameLayout returns a layout ready to allocate a function's frame.
func NewFrameLayout() *FrameLayout {
	return &FrameLayout{nextLocalOffset: LocalsStartOffset, nextParamOffset: ParamsStartOffset}
}

// AllocLocal assigns the next available local-variable slot to b, sized
// according to b's type, and advances the layout.
func (l *FrameLayout) AllocLocal(b *Binding) {
	if b.Scope != Cell {
		b.Scope = Local
	}
	b.FrameOffset = l.nextLocalOffset
	l.nextLocalOffset += slotSize(b)
}

// AllocParam assigns the next available parameter slot to b, walking
// downward from the static link, and advances the layout. Parameters must
// be allocated in declaration order for the caller's pushed arguments to
// line up.
func (l *FrameLayout) AllocParam(b *Binding) {
	if b.Scope != Cell {
		b.Scope = Parameter
	}
	b.FrameOffset = l.nextParamOffset
	l.nextParamOffset -= slotSize(b)
}

// Size returns the total number of bytes of local storage allocated so
// far, rounded up to a multiple of 4 (MIPS word alignment).
func (l *FrameLayout) Size() int {
	n := l.nextLocalOffset - LocalsStartOffset
	if rem := n % 4; rem != 0 {
		n += 4 - rem
	}
	return n
}

func slotSize(b *Binding) int {
	if b.Scope == Cell || b.Scope == Free {
		return 8 // boxed: a pointer-sized cell slot regardless of element type
	}
	if sz := b.Type.Kind().Size(); sz > 0 {
		return sz
	}
	return 4
}
