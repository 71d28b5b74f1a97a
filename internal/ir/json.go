package ir

import "encoding/json"

// The union variants marshal with a "kind" discriminator so that record
// dumps and content hashes distinguish, say, a receiver from a variadic.

func (m *Method) MarshalJSON() ([]byte, error) {
	type alias Method
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"method", (*alias)(m)})
}

func (o *OutputType) MarshalJSON() ([]byte, error) {
	type alias OutputType
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"output_type", (*alias)(o)})
}

func (v *Verbatim) MarshalJSON() ([]byte, error) {
	type alias Verbatim
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"verbatim", (*alias)(v)})
}

func (r *Receiver) MarshalJSON() ([]byte, error) {
	type alias Receiver
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"receiver", (*alias)(r)})
}

func (t *Typed) MarshalJSON() ([]byte, error) {
	type alias Typed
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"typed", (*alias)(t)})
}

func (v *Variadic) MarshalJSON() ([]byte, error) {
	type alias Variadic
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"variadic", (*alias)(v)})
}

func (b *RawBody) MarshalJSON() ([]byte, error) {
	type alias RawBody
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"raw", (*alias)(b)})
}

func (d *DelegateBody) MarshalJSON() ([]byte, error) {
	type alias DelegateBody
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*alias
	}{"delegate", (*alias)(d)})
}
