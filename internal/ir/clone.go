package ir

// Clone returns a deep copy of rec. The copy shares no slices or pointers
// with the original.
func Clone(rec *ImplRecord) *ImplRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	c.Attrs = cloneStrings(rec.Attrs)
	c.SelfType = cloneType(rec.SelfType)
	if rec.Trait != nil {
		t := *rec.Trait
		t.Args = append([]GenericArg(nil), rec.Trait.Args...)
		c.Trait = &t
	}
	if rec.Members != nil {
		c.Members = make([]Member, len(rec.Members))
		for i, m := range rec.Members {
			c.Members[i] = cloneMember(m)
		}
	}
	return &c
}

func cloneMember(m Member) Member {
	switch m := m.(type) {
	case *Method:
		c := *m
		c.Attrs = cloneStrings(m.Attrs)
		if m.Params != nil {
			c.Params = make([]Param, len(m.Params))
			for i, p := range m.Params {
				c.Params[i] = cloneParam(p)
			}
		}
		c.Body = cloneBody(m.Body)
		return &c
	case *OutputType:
		c := *m
		c.Attrs = cloneStrings(m.Attrs)
		c.Type = cloneType(m.Type)
		return &c
	case *Verbatim:
		c := *m
		c.Attrs = cloneStrings(m.Attrs)
		return &c
	default:
		return m
	}
}

func cloneParam(p Param) Param {
	switch p := p.(type) {
	case *Receiver:
		c := *p
		return &c
	case *Typed:
		c := *p
		c.Attrs = cloneStrings(p.Attrs)
		c.Type = cloneType(p.Type)
		return &c
	case *Variadic:
		c := *p
		return &c
	default:
		return p
	}
}

func cloneBody(b Body) Body {
	switch b := b.(type) {
	case *RawBody:
		c := *b
		return &c
	case *DelegateBody:
		c := *b
		c.Args = cloneStrings(b.Args)
		return &c
	default:
		return b
	}
}

func cloneType(t TypeExpr) TypeExpr {
	if t.Ref != nil {
		r := *t.Ref
		r.Elem = cloneType(t.Ref.Elem)
		t.Ref = &r
	}
	return t
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
