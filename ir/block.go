package ir

import "strings"

// Block is a basic block: a named instruction sequence ending in a
// single terminator. A block without a terminator is still under
// construction.
type Block struct {
	name   string
	Parent *Func
	Instrs []Instruction
	Term   Terminator
}

// Name returns the block's label name.
func (b *Block) Name() string { return b.name }

// Ident returns the block's rendering as a branch target.
func (b *Block) Ident() string { return "%" + b.name }

// Terminated reports whether the block already ends in a terminator,
// meaning control leaves it unconditionally.
func (b *Block) Terminated() bool { return b.Term != nil }

func (b *Block) String() string {
	var out strings.Builder
	out.WriteString(b.name)
	out.WriteString(":\n")
	for _, ins := range b.Instrs {
		out.WriteString("  ")
		out.WriteString(ins.String())
		out.WriteString("\n")
	}
	if b.Term != nil {
		out.WriteString("  ")
		out.WriteString(b.Term.String())
		out.WriteString("\n")
	}
	return out.String()
}
