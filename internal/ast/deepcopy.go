package ast

import "errors"

// ErrNotCopyable is returned by DeepCopy when the traversal reaches the
// avoid node, or reaches a TreeRef whose target is missing or is itself the
// avoid node. Reaching either means the requested copy would either not
// terminate or silently drop a cycle-breaking edge, so the whole copy is
// abandoned rather than returning a partial tree.
var ErrNotCopyable = errors.New("ast: tree is not copyable relative to the given avoid node")

// DeepCopy returns an independent copy of tree that shares no mutable node
// with the original. avoid names a node whose recurrence during the
// traversal indicates an unwanted cycle; a nil avoid defaults to tree
// itself. The root of tree is exempt from the avoid check on this initial
// call only (nested recursion through a TreeRef does not regrant that
// exemption — see copyNode). Absent (nil) child slots are copied as nil.
//
// DeepCopy returns ErrNotCopyable if and only if the traversal would revisit
// avoid, or dereferences a TreeRef whose target is nil or equal to avoid.
func DeepCopy(tree Node, avoid Node) (Node, error) {
	if tree == nil {
		return nil, nil
	}
	if avoid == nil {
		avoid = tree
	}
	return copyNode(tree, avoid, true)
}

// copyNode performs one node's copy. root is true only for the very first
// call in a given DeepCopy invocation; every recursive call — including the
// one TreeRef makes into its referenced tree — passes root=false, so a
// TreeRef pointing back at the outermost root is still caught by the avoid
// check on re-entry.
func copyNode(n Node, avoid Node, root bool) (Node, error) {
	if n == nil {
		return nil, nil
	}
	if !root && avoid != nil && n == avoid {
		return nil, ErrNotCopyable
	}

	switch t := n.(type) {
	case *ClassDef:
		name, err := copyNode(t.Name, avoid, false)
		if err != nil {
			return nil, err
		}
		ancestors, err := copyVec(t.Ancestors, avoid)
		if err != nil {
			return nil, err
		}
		body, err := copyVec(t.Body, avoid)
		if err != nil {
			return nil, err
		}
		return &ClassDef{base: t.base, Symbol: t.Symbol, Name: name, Ancestors: ancestors, Body: body, Kind: t.Kind}, nil

	case *MethodDef:
		args, err := copyVec(t.Args, avoid)
		if err != nil {
			return nil, err
		}
		rhs, err := copyNode(t.Rhs, avoid, false)
		if err != nil {
			return nil, err
		}
		return &MethodDef{base: t.base, Symbol: t.Symbol, Name: t.Name, Args: args, Rhs: rhs, IsSelf: t.IsSelf}, nil

	case *ConstDef:
		rhs, err := copyNode(t.Rhs, avoid, false)
		if err != nil {
			return nil, err
		}
		return &ConstDef{base: t.base, Symbol: t.Symbol, Rhs: rhs}, nil

	case *If:
		cond, err := copyNode(t.Cond, avoid, false)
		if err != nil {
			return nil, err
		}
		thenp, err := copyNode(t.Thenp, avoid, false)
		if err != nil {
			return nil, err
		}
		elsep, err := copyNode(t.Elsep, avoid, false)
		if err != nil {
			return nil, err
		}
		return &If{base: t.base, Cond: cond, Thenp: thenp, Elsep: elsep}, nil

	case *While:
		cond, err := copyNode(t.Cond, avoid, false)
		if err != nil {
			return nil, err
		}
		body, err := copyNode(t.Body, avoid, false)
		if err != nil {
			return nil, err
		}
		return &While{base: t.base, Cond: cond, Body: body}, nil

	case *Break:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Break{base: t.base, Expr: expr}, nil

	case *Retry:
		return &Retry{base: t.base}, nil

	case *Next:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Next{base: t.base, Expr: expr}, nil

	case *Return:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Return{base: t.base, Expr: expr}, nil

	case *Yield:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Yield{base: t.base, Expr: expr}, nil

	case *RescueCase:
		exceptions, err := copyVec(t.Exceptions, avoid)
		if err != nil {
			return nil, err
		}
		v, err := copyNode(t.Var, avoid, false)
		if err != nil {
			return nil, err
		}
		body, err := copyNode(t.Body, avoid, false)
		if err != nil {
			return nil, err
		}
		return &RescueCase{base: t.base, Exceptions: exceptions, Var: v, Body: body}, nil

	case *Rescue:
		body, err := copyNode(t.Body, avoid, false)
		if err != nil {
			return nil, err
		}
		cases, err := copyVec(t.RescueCases, avoid)
		if err != nil {
			return nil, err
		}
		elseN, err := copyNode(t.Else, avoid, false)
		if err != nil {
			return nil, err
		}
		ensure, err := copyNode(t.Ensure, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Rescue{base: t.base, Body: body, RescueCases: cases, Else: elseN, Ensure: ensure}, nil

	case *Ident:
		return &Ident{base: t.base, Symbol: t.Symbol}, nil

	case *Local:
		return &Local{base: t.base, LocalVariable: t.LocalVariable}, nil

	case *UnresolvedIdent:
		return &UnresolvedIdent{base: t.base, Kind: t.Kind, Name: t.Name}, nil

	case *Self:
		return &Self{base: t.base, Claz: t.Claz}, nil

	case *RestArg:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &RestArg{base: t.base, Expr: expr}, nil

	case *KeywordArg:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &KeywordArg{base: t.base, Expr: expr}, nil

	case *OptionalArg:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		def, err := copyNode(t.Default, avoid, false)
		if err != nil {
			return nil, err
		}
		return &OptionalArg{base: t.base, Expr: expr, Default: def}, nil

	case *BlockArg:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &BlockArg{base: t.base, Expr: expr}, nil

	case *ShadowArg:
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &ShadowArg{base: t.base, Expr: expr}, nil

	case *Assign:
		lhs, err := copyNode(t.Lhs, avoid, false)
		if err != nil {
			return nil, err
		}
		rhs, err := copyNode(t.Rhs, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Assign{base: t.base, Lhs: lhs, Rhs: rhs}, nil

	case *Send:
		recv, err := copyNode(t.Recv, avoid, false)
		if err != nil {
			return nil, err
		}
		args, err := copyVec(t.Args, avoid)
		if err != nil {
			return nil, err
		}
		var block *Block
		if t.Block != nil {
			copied, err := copyNode(t.Block, avoid, false)
			if err != nil {
				return nil, err
			}
			block = copied.(*Block)
		}
		return &Send{base: t.base, Recv: recv, Fun: t.Fun, Args: args, Block: block}, nil

	case *Cast:
		arg, err := copyNode(t.Arg, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Cast{base: t.base, Type: t.Type, Arg: arg, Kind: t.Kind}, nil

	case *Hash:
		keys, err := copyVec(t.Keys, avoid)
		if err != nil {
			return nil, err
		}
		values, err := copyVec(t.Values, avoid)
		if err != nil {
			return nil, err
		}
		return &Hash{base: t.base, Keys: keys, Values: values}, nil

	case *Array:
		elems, err := copyVec(t.Elems, avoid)
		if err != nil {
			return nil, err
		}
		return &Array{base: t.base, Elems: elems}, nil

	case *Literal:
		return &Literal{base: t.base, Value: t.Value}, nil

	case *ConstantLit:
		scope, err := copyNode(t.Scope, avoid, false)
		if err != nil {
			return nil, err
		}
		return &ConstantLit{base: t.base, Scope: scope, Cnst: t.Cnst}, nil

	case *ArraySplat:
		arg, err := copyNode(t.Arg, avoid, false)
		if err != nil {
			return nil, err
		}
		return &ArraySplat{base: t.base, Arg: arg}, nil

	case *HashSplat:
		arg, err := copyNode(t.Arg, avoid, false)
		if err != nil {
			return nil, err
		}
		return &HashSplat{base: t.base, Arg: arg}, nil

	case *ZSuperArgs:
		return &ZSuperArgs{base: t.base}, nil

	case *Block:
		args, err := copyVec(t.Args, avoid)
		if err != nil {
			return nil, err
		}
		body, err := copyNode(t.Body, avoid, false)
		if err != nil {
			return nil, err
		}
		return &Block{base: t.base, Args: args, Body: body, Symbol: t.Symbol}, nil

	case *InsSeq:
		stats, err := copyVec(t.Stats, avoid)
		if err != nil {
			return nil, err
		}
		expr, err := copyNode(t.Expr, avoid, false)
		if err != nil {
			return nil, err
		}
		return &InsSeq{base: t.base, Stats: stats, Expr: expr}, nil

	case *EmptyTree:
		return &EmptyTree{base: t.base}, nil

	case *TreeRef:
		if t.Tree == nil || t.Tree == avoid {
			return nil, ErrNotCopyable
		}
		// Recursing into the referenced tree does not re-grant the root
		// exemption: if that tree's own root equals avoid, the copy fails.
		return copyNode(t.Tree, avoid, false)

	default:
		return nil, ErrNotCopyable
	}
}

// copyVec deep-copies every element of a child slice, in order, short
// circuiting on the first failure.
func copyVec(elems []Node, avoid Node) ([]Node, error) {
	if elems == nil {
		return nil, nil
	}
	out := make([]Node, 0, len(elems))
	for _, e := range elems {
		c, err := copyNode(e, avoid, false)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
